package geolife

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Canonicalize strips every non-digit from a timestamp so that
// "2008/10/23 02:53:04" and "2008-10-23 02:53:04" compare equal.
func Canonicalize(ts string) string {
	var b strings.Builder
	b.Grow(len(ts))
	for i := 0; i < len(ts); i++ {
		if c := ts[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

type labelEntry struct {
	start string
	mode  string
}

// LabelIndex holds one user's labelled intervals. Starts, Ends and Modes are
// aligned by row in file order.
type LabelIndex struct {
	Starts []string
	Ends   []string
	Modes  []string

	byEnd map[string]labelEntry
}

// NewLabelIndex creates an empty label index
func NewLabelIndex() *LabelIndex {
	return &LabelIndex{byEnd: make(map[string]labelEntry)}
}

// Add appends one labelled interval. The first row added for a canonical end
// timestamp is the one Lookup will see.
func (idx *LabelIndex) Add(start, end, mode string) {
	start, end = Canonicalize(start), Canonicalize(end)
	idx.Starts = append(idx.Starts, start)
	idx.Ends = append(idx.Ends, end)
	idx.Modes = append(idx.Modes, mode)

	if _, ok := idx.byEnd[end]; !ok {
		idx.byEnd[end] = labelEntry{start: start, mode: mode}
	}
}

// Len returns the number of labelled rows
func (idx *LabelIndex) Len() int {
	return len(idx.Ends)
}

// Lookup returns the mode of the first row whose end equals end, provided the
// same row also starts at start. Both arguments may use any separators.
func (idx *LabelIndex) Lookup(start, end string) (string, bool) {
	entry, ok := idx.byEnd[Canonicalize(end)]
	if !ok || entry.start != Canonicalize(start) {
		return "", false
	}
	return entry.mode, true
}

// ParseLabels reads a tab-separated labels file. The first line is a header.
func ParseLabels(r io.Reader) (*LabelIndex, error) {
	idx := NewLabelIndex()
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		cols := strings.Split(text, "\t")
		if len(cols) < 3 {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated columns, got %d", line, len(cols))
		}
		idx.Add(cols[0], cols[1], strings.TrimSpace(cols[2]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	return idx, nil
}

// LoadLabels parses the labels file at path
func LoadLabels(path string) (*LabelIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer f.Close()

	idx, err := ParseLabels(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return idx, nil
}

// LoadLabeledIDs reads the newline-separated list of users that have labels
func LoadLabeledIDs(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labeled ids: %w", err)
	}

	ids := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids[id] = true
		}
	}
	return ids, nil
}
