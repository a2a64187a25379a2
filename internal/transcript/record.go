// Package transcript turns the console transcript of a test-harness run into
// invocation records grouped by test directory.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record is one re-runnable test invocation
type Record struct {
	GroupPath string // directory part of the test path, e.g. tests/userprog
	Name      string
	PreArgs   string // launcher options before the separator, common flags removed
	RunFlag   string // options after the separator, up to and including the run flag
	ProgArgs  string // arguments handed to the test program; may be empty
}

// SummaryEntry is one pass/FAIL line of the result summary
type SummaryEntry struct {
	FullPath string
	Name     string
}

// ReadLines reads the whole transcript into memory, one element per line
// with line terminators removed. Lines may be of any length.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
	}
}

// dirname returns everything before the last slash, without trailing
// slashes unless the prefix is made of slashes only. A path without a
// slash has an empty directory.
func dirname(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	head := p[:i+1]
	if trimmed := strings.TrimRight(head, "/"); trimmed != "" {
		return trimmed
	}
	return head
}
