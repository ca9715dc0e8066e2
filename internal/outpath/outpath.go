// Package outpath resolves where the license archive is written
package outpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve turns the user's output argument into an absolute file path.
// An empty value, an existing directory, or a value ending in a path
// separator gets defaultName appended.
func Resolve(output, defaultName string) (string, error) {
	path := output
	switch {
	case path == "":
		path = defaultName
	case strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/"):
		path = filepath.Join(path, defaultName)
	default:
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, defaultName)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path %q: %w", output, err)
	}
	return abs, nil
}

// EnsureParent creates the directory that will hold path
func EnsureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
