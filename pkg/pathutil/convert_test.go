package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestToRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths below are POSIX-style")
	}

	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{"inside root", "/home/user/words/dictionary/kobuta.txt", "/home/user/words", "dictionary/kobuta.txt"},
		{"outside root", "/other/ippan.txt", "/home/user/words", "/other/ippan.txt"},
		{"already relative", "dictionary/kobuta.txt", "/home/user/words", "dictionary/kobuta.txt"},
		{"empty path", "", "/home/user/words", ""},
		{"empty root", "/home/user/words/a.txt", "", "/home/user/words/a.txt"},
		{"dotdot-prefixed name inside root", "/root/..words.txt", "/root", "..words.txt"},
		{"unclean path", "/home/user/words/./dictionary/../alt.csv", "/home/user/words", "alt.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToRelative(tt.absPath, tt.rootDir)
			if got != tt.expected {
				t.Errorf("ToRelative(%q, %q) = %q, want %q", tt.absPath, tt.rootDir, got, tt.expected)
			}
		})
	}
}

func TestToAbsolute(t *testing.T) {
	root := t.TempDir()

	if got := ToAbsolute("dictionary/kobuta.txt", root); got != filepath.Join(root, "dictionary", "kobuta.txt") {
		t.Errorf("unexpected absolute path %q", got)
	}
	if got := ToAbsolute(root, "/elsewhere"); got != root {
		t.Errorf("absolute path should be returned unchanged, got %q", got)
	}
	if got := ToAbsolute("a.txt", ""); got != "a.txt" {
		t.Errorf("empty root should return path unchanged, got %q", got)
	}
}
