// Package testhelper holds small utilities shared by package tests.
package testhelper

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var leadingSpaces = regexp.MustCompile(`^[ \t]*`)

// TrimIndent drops the first line of a raw string literal and removes the indentation of the
// second line from every line, so YAML and SQL fixtures can be indented with the test code.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")
	if len(lines) < 2 {
		return src
	}

	indent := leadingSpaces.FindString(lines[1])

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}

	return strings.Join(lines[1:], "\n")
}

// WriteFile writes content to name inside dir, or inside a new temporary directory when dir is empty.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	if dir == "" {
		dir = t.TempDir()
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}

	return path
}
