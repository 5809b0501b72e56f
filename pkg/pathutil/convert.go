// Package pathutil converts between absolute paths used internally and the
// shorter relative names shown to users (dictionary listings, watch events).
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to a slash-separated path relative to
// rootDir. It falls back to the original path when the path is already
// relative, lies outside rootDir, or cannot be converted.
//
// Examples:
//   - ToRelative("/home/user/words/dictionary/kobuta.txt", "/home/user/words") → "dictionary/kobuta.txt"
//   - ToRelative("/other/ippan.txt", "/home/user/words") → "/other/ippan.txt" (outside root)
//   - ToRelative("dictionary/kobuta.txt", "/home/user/words") → "dictionary/kobuta.txt" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// Outside the root: the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return filepath.ToSlash(relPath)
}

// ToAbsolute resolves path against rootDir unless it is already absolute.
func ToAbsolute(path, rootDir string) string {
	if path == "" || filepath.IsAbs(path) || rootDir == "" {
		return path
	}
	return filepath.Join(rootDir, filepath.FromSlash(path))
}
