// Package batch applies one quantization filter to every eligible image in
// a directory using a fixed pool of workers.
//
// Each task owns its decoded image and writes its own output file; the
// workers share nothing but the task queue. Run blocks until the queue is
// drained and returns a Report with one Result per discovered file.
package batch
