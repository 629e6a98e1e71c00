package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Available returns path when nothing exists there, otherwise the first
// "<stem>_<n><ext>" with n >= 1 in the same folder that is free.
// The extension is kept exactly as given, including its case.
func Available(path string) string {
	if !exists(path) {
		return path
	}
	for n := 1; ; n++ {
		candidate := Candidate(path, n)
		if !exists(candidate) {
			return candidate
		}
	}
}

// Candidate returns the n-th suffixed variant of path
func Candidate(path string, n int) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
