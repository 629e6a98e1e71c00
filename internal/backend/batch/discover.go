package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jo-hoe/goquantize/internal/backend/imagefile"
)

// Discover lists the regular files directly inside dir whose names end in
// .jpg, .jpeg or .png (any case). Symlinks count when they resolve to a
// regular file. Subdirectories and other files are skipped.
// Paths are returned sorted for a stable task order.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !imagefile.IsSupported(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isRegularFile(entry, path) {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func isRegularFile(entry fs.DirEntry, path string) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("skipping unresolvable symlink", "path", path, "error", err)
		return false
	}
	return info.Mode().IsRegular()
}
