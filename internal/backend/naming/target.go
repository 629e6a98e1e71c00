package naming

import (
	"os"
	"path/filepath"
	"strings"
)

// Target returns the requested output path for source before collision
// resolution. An existing directory (or a path ending in a separator)
// receives the source's base name; an empty destination reuses source.
func Target(source, destination string) string {
	if destination == "" {
		return source
	}
	if isDirectory(destination) {
		return filepath.Join(destination, filepath.Base(source))
	}
	return destination
}

func isDirectory(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
