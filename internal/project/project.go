// Package project locates the project root for a working directory, so
// command files and configuration resolve identically from any subdirectory.
package project

import (
	"os"
	"path/filepath"
	"sync"
)

// rootMarkers identify a project root, checked in order at each level.
var rootMarkers = []string{".opencode", ".git"}

// cache stores resolved roots by directory to avoid repeated walks.
var (
	cacheMu sync.RWMutex
	cache   = make(map[string]string)
)

// Root resolves the project root for a directory by walking up the tree
// until a marker is found. A directory with no marker anywhere above it is
// its own root.
func Root(directory string) (string, error) {
	directory, err := filepath.Abs(directory)
	if err != nil {
		return "", err
	}

	cacheMu.RLock()
	if root, ok := cache[directory]; ok {
		cacheMu.RUnlock()
		return root, nil
	}
	cacheMu.RUnlock()

	root := directory
	for dir := directory; ; {
		if hasMarker(dir) {
			root = dir
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	cacheMu.Lock()
	cache[directory] = root
	cacheMu.Unlock()

	return root, nil
}

func hasMarker(dir string) bool {
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// ClearCache drops all cached roots. Intended for tests.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]string)
	cacheMu.Unlock()
}
