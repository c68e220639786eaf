// Package testutil builds Geolife dataset fixtures on disk for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

// PLTHeader is the six-line preamble of every Geolife trajectory file
const PLTHeader = "Geolife trajectory\n" +
	"WGS 84\n" +
	"Altitude is in Feet\n" +
	"Reserved 3\n" +
	"0,2,255,My Track,0,0,2,8421376\n" +
	"0\n"

// Fix is one trajectory row
type Fix struct {
	Lat      float64
	Lon      float64
	Altitude float64
	Time     string // "2006-01-02 15:04:05"
}

// Days returns the PLT day-count column for the fix
func (f Fix) Days() float64 {
	ts, err := time.Parse("2006-01-02 15:04:05", f.Time)
	if err != nil {
		panic(err)
	}
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	return ts.Sub(epoch).Hours() / 24
}

// PLT renders a trajectory file with the standard header
func PLT(fixes ...Fix) string {
	var b strings.Builder
	b.WriteString(PLTHeader)
	for _, f := range fixes {
		date, clock, _ := strings.Cut(f.Time, " ")
		fmt.Fprintf(&b, "%g,%g,0,%g,%.10f,%s,%s\n", f.Lat, f.Lon, f.Altitude, f.Days(), date, clock)
	}
	return b.String()
}

// OversizedPLT renders a trajectory file with more than limit lines
func OversizedPLT(limit int) string {
	fixes := make([]Fix, 0, limit)
	start := time.Date(2008, 10, 23, 0, 0, 0, 0, time.UTC)
	for i := 0; i < limit; i++ {
		fixes = append(fixes, Fix{
			Lat:      39.9,
			Lon:      116.3,
			Altitude: 100,
			Time:     start.Add(time.Duration(i) * time.Second).Format("2006-01-02 15:04:05"),
		})
	}
	return PLT(fixes...)
}

// UserFixture describes one user directory
type UserFixture struct {
	Labels       string            // labels.txt content; empty means no file
	Trajectories map[string]string // file name -> content
}

// WriteDataset lays out root/labeled_ids.txt and root/Data/<uid>/... and
// returns root
func WriteDataset(t *testing.T, labeled []string, users map[string]UserFixture) string {
	t.Helper()
	root := t.TempDir()

	ids := append([]string(nil), labeled...)
	sort.Strings(ids)
	WriteFile(t, filepath.Join(root, "labeled_ids.txt"), strings.Join(ids, "\n")+"\n")

	for uid, u := range users {
		userDir := filepath.Join(root, "Data", uid)
		if u.Labels != "" {
			WriteFile(t, filepath.Join(userDir, "labels.txt"), u.Labels)
		}
		for name, content := range u.Trajectories {
			WriteFile(t, filepath.Join(userDir, "Trajectory", name), content)
		}
		if len(u.Trajectories) == 0 {
			if err := os.MkdirAll(filepath.Join(userDir, "Trajectory"), 0o755); err != nil {
				t.Fatalf("failed to create trajectory dir: %v", err)
			}
		}
	}

	return root
}

// WriteFile writes content, creating parent directories
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Labels renders a labels.txt file from rows of start, end, mode
func Labels(rows ...[3]string) string {
	var b strings.Builder
	b.WriteString("Start Time\tEnd Time\tTransportation Mode\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", r[0], r[1], r[2])
	}
	return b.String()
}
