package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestName is the file name looked up by FindManifest.
const ManifestName = "cstrlit.toml"

// ErrManifestNotFound is returned when no manifest exists in startDir or above.
var ErrManifestNotFound = errors.New("no " + ManifestName + " found")

// FindManifest walks up from startDir to locate cstrlit.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Locate resolves a user supplied path: a manifest file is used as is, a
// directory is searched upwards with FindManifest.
func Locate(path string) (string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return filepath.Abs(path)
	}
	manifestPath, ok, err := FindManifest(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w in %s or any parent directory", ErrManifestNotFound, path)
	}
	return manifestPath, nil
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
