// Package naming resolves where a processed image is written and picks a
// file name that does not overwrite anything already on disk.
//
//	Target("in/cat.png", "out")      -> out/cat.png
//	Target("in/cat.png", "")         -> in/cat.png
//	Available("out/cat.png")         -> out/cat_1.png   (when cat.png exists)
package naming
