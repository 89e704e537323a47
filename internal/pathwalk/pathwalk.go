package pathwalk

import (
	"fmt"
	"iter"
	"path/filepath"
)

const (
	currentDirectoryConstant            = "."
	canonicalizeFailureTemplateConstant = "unable to canonicalize %q: %w"
)

// Canonicalize resolves path to an absolute, cleaned form without trailing separators.
// An empty path resolves to the working directory.
func Canonicalize(path string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return "", fmt.Errorf(canonicalizeFailureTemplateConstant, path, absoluteError)
	}
	return filepath.Clean(absolutePath), nil
}

// Parent returns the directory containing path. It reports false for roots and
// for single-segment relative paths.
func Parent(path string) (string, bool) {
	cleanedPath := filepath.Clean(path)
	parentPath := filepath.Dir(cleanedPath)
	if parentPath == cleanedPath {
		return "", false
	}
	if parentPath == currentDirectoryConstant && !filepath.IsAbs(cleanedPath) {
		return "", false
	}
	return parentPath, true
}

// Ancestors yields path followed by each of its parents up to and including the root.
// The sequence performs no filesystem access and is safe to range over repeatedly.
func Ancestors(path string) iter.Seq[string] {
	return func(yield func(string) bool) {
		currentPath := filepath.Clean(path)
		for {
			if !yield(currentPath) {
				return
			}
			parentPath, hasParent := Parent(currentPath)
			if !hasParent {
				return
			}
			currentPath = parentPath
		}
	}
}
