package vfs

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// diffContext is the number of context lines around each hunk.
const diffContext = 3

// Diff returns a unified diff between two versions of path. A missing old
// version (created file) diffs against /dev/null. Identical content yields "".
func Diff(path, old, new string, existed bool) string {
	if existed && old == new {
		return ""
	}
	from := "a/" + path
	if !existed {
		from = "/dev/null"
		old = ""
	}
	u := difflib.UnifiedDiff{
		A:        splitLines(old),
		B:        splitLines(new),
		FromFile: from,
		ToFile:   "b/" + path,
		Context:  diffContext,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}

// splitLines keeps line terminators so the diff reproduces the input exactly.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
