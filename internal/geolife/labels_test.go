package geolife

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLabels = "Start Time\tEnd Time\tTransportation Mode\n" +
	"2007/06/26 11:32:29\t2007/06/26 11:40:29\tbus\n" +
	"2008/03/28 14:52:54\t2008/03/28 15:59:59\ttrain\n" +
	"2008/03/28 16:00:00\t2008/03/28 22:02:00\twalk\r\n"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2008/03/28 14:52:54", "20080328145254"},
		{"2008-03-28 14:52:54", "20080328145254"},
		{"2008-03-28 14:52:54\r", "20080328145254"},
		{"", ""},
		{"20080328145254", "20080328145254"},
	}

	for _, tt := range tests {
		got := Canonicalize(tt.in)
		assert.Equal(t, tt.want, got, "Canonicalize(%q)", tt.in)
		assert.Equal(t, got, Canonicalize(got), "not idempotent for %q", tt.in)
	}
}

func TestParseLabelsKeepsRowsAligned(t *testing.T) {
	idx, err := ParseLabels(strings.NewReader(sampleLabels))
	require.NoError(t, err)

	require.Equal(t, 3, idx.Len())
	assert.Len(t, idx.Starts, idx.Len())
	assert.Len(t, idx.Modes, idx.Len())

	want := &LabelIndex{
		Starts: []string{"20070626113229", "20080328145254", "20080328160000"},
		Ends:   []string{"20070626114029", "20080328155959", "20080328220200"},
		Modes:  []string{"bus", "train", "walk"},
	}
	if diff := cmp.Diff(want, idx, cmpopts.IgnoreUnexported(LabelIndex{})); diff != "" {
		t.Errorf("ParseLabels mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLabelsRejectsShortRow(t *testing.T) {
	_, err := ParseLabels(strings.NewReader("Start Time\tEnd Time\tTransportation Mode\n2007/06/26 11:32:29\tbus\n"))
	assert.Error(t, err)
}

func TestParseLabelsHeaderOnly(t *testing.T) {
	idx, err := ParseLabels(strings.NewReader("Start Time\tEnd Time\tTransportation Mode\n"))
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
}

func TestLookupFirstMatchWins(t *testing.T) {
	idx := NewLabelIndex()
	idx.Add("2008/01/01 10:00:00", "2008/01/01 11:00:00", "bike")
	idx.Add("2008/01/01 10:00:00", "2008/01/01 11:00:00", "walk")
	idx.Add("2008/01/01 09:00:00", "2008/01/01 11:00:00", "bus")

	mode, ok := idx.Lookup("2008-01-01 10:00:00", "2008-01-01 11:00:00")
	assert.True(t, ok)
	assert.Equal(t, "bike", mode)

	// Only the first row with this end is consulted
	_, ok = idx.Lookup("2008-01-01 09:00:00", "2008-01-01 11:00:00")
	assert.False(t, ok)
}

func TestLoadLabelsMissingFile(t *testing.T) {
	_, err := LoadLabels(filepath.Join(t.TempDir(), "labels.txt"))
	assert.Error(t, err)
}

func TestLoadLabeledIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labeled_ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("010\n020\n\n112\n"), 0o644))

	ids, err := LoadLabeledIDs(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"010": true, "020": true, "112": true}, ids)
}
