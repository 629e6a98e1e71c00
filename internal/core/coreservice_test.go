package core

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
)

func newTestCoreService(t *testing.T, withJournal bool) *CoreService {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 2
	if withJournal {
		cfg.Database = Database{Type: "sqlite", ConnectionString: ":memory:"}
	}
	svc, err := NewCoreService(cfg)
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.SetRGBA(i%2, i/2, c)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestCoreService_FilterImage(t *testing.T) {
	svc := newTestCoreService(t, false)

	out, err := svc.FilterImage(pngBytes(t, color.RGBA{10, 10, 10, 255}), filterstructure.Rubik, filterstructure.Args{})
	if err != nil {
		t.Fatalf("FilterImage error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 200 {
		t.Errorf("Expected rubik blue, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCoreService_ConfiguredAcceptance(t *testing.T) {
	svc := newTestCoreService(t, false)
	dark := 150.0
	svc.config.Acceptance = &dark

	// total 540 is white at the default acceptance but black at 150 (threshold 573)
	out, err := svc.FilterImage(pngBytes(t, color.RGBA{180, 180, 180, 255}), filterstructure.BlackWhite, filterstructure.Args{})
	if err != nil {
		t.Fatalf("FilterImage error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Errorf("Expected black with configured acceptance, got r=%d", r>>8)
	}
}

func TestCoreService_RunBatchRecordsJournal(t *testing.T) {
	svc := newTestCoreService(t, true)
	src := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(src, name), pngBytes(t, color.RGBA{50, 50, 50, 255}), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	report, err := svc.RunBatch(filterstructure.GrayScale, src, filepath.Join(t.TempDir(), "out"), filterstructure.Args{})
	if err != nil {
		t.Fatalf("RunBatch error: %v", err)
	}
	if report.Succeeded != 2 {
		t.Fatalf("Expected 2 successes, got %d", report.Succeeded)
	}

	run, err := svc.GetRun(report.RunID)
	if err != nil {
		t.Fatalf("GetRun error: %v", err)
	}
	if run.Succeeded != 2 || len(run.Results) != 2 || run.Finished == nil {
		t.Errorf("Unexpected journal entry %+v", run)
	}

	runs, err := svc.GetRuns(10)
	if err != nil {
		t.Fatalf("GetRuns error: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != report.RunID {
		t.Errorf("Expected the single run %s, got %+v", report.RunID, runs)
	}
}

func TestCoreService_JournalDisabled(t *testing.T) {
	svc := newTestCoreService(t, false)
	if _, err := svc.GetRuns(10); !errors.Is(err, ErrJournalDisabled) {
		t.Errorf("Expected ErrJournalDisabled, got %v", err)
	}
	if _, err := svc.GetRun("x"); !errors.Is(err, ErrJournalDisabled) {
		t.Errorf("Expected ErrJournalDisabled, got %v", err)
	}
}

func TestCoreService_ProcessFile(t *testing.T) {
	svc := newTestCoreService(t, false)
	dir := t.TempDir()
	source := filepath.Join(dir, "pic.png")
	if err := os.WriteFile(source, pngBytes(t, color.RGBA{255, 255, 255, 255}), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	saved, err := svc.ProcessFile(source, filterstructure.GrayScale, "", filterstructure.Args{})
	if err != nil {
		t.Fatalf("ProcessFile error: %v", err)
	}
	if want := filepath.Join(dir, "pic_1.png"); saved != want {
		t.Errorf("Expected %q, got %q", want, saved)
	}
}
