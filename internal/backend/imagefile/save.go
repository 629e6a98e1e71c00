package imagefile

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"

	"github.com/jo-hoe/goquantize/internal/backend/naming"
)

// Saver writes images without replacing existing files
type Saver struct {
	JPEGQuality int
}

// Save encodes img at the first free name derived from target and returns that name.
// The name is claimed with O_EXCL, so concurrent savers never share a file.
func (s Saver) Save(img image.Image, target string) (string, error) {
	format, err := FormatFromPath(target)
	if err != nil {
		return "", err
	}

	for {
		candidate := naming.Available(target)
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			slog.Debug("imagefile: name taken concurrently, retrying", "path", candidate)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", candidate, err)
		}

		if err := s.write(f, img, format); err != nil {
			_ = f.Close()
			_ = os.Remove(candidate)
			return "", err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(candidate)
			return "", fmt.Errorf("failed to close %s: %w", candidate, err)
		}

		if candidate != target {
			slog.Debug("imagefile: target existed, saved under new name",
				"target", target,
				"saved", candidate)
		}
		return candidate, nil
	}
}

func (s Saver) write(f *os.File, img image.Image, format imaging.Format) error {
	w := bufio.NewWriter(f)
	if err := Encode(w, img, format, s.JPEGQuality); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Name(), err)
	}
	return nil
}
