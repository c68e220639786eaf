package geolife

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// PLTHeaderLines is the number of preamble lines in every .plt file
	PLTHeaderLines = 6

	// MaxTrajectoryLines is the largest file, header included, that is still
	// ingested. Longer logs are treated as unusable.
	MaxTrajectoryLines = 2506

	// TimestampLayout is the merged date and time format of a PLT row
	TimestampLayout = "2006-01-02 15:04:05"
)

// PLTRow is one fix of a raw trajectory file
type PLTRow struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	DateDays  float64
	Timestamp string // date and time columns joined by a space
	Time      time.Time
}

// CountLines counts lines the way a line reader does: a trailing fragment
// without a newline still counts.
func CountLines(data []byte) int {
	n := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// ParsePLT parses the data rows of a trajectory file
func ParsePLT(data []byte) ([]PLTRow, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var rows []PLTRow
	line := 0
	for scanner.Scan() {
		line++
		if line <= PLTHeaderLines {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		row, err := parsePLTRow(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan trajectory: %w", err)
	}

	return rows, nil
}

func parsePLTRow(text string) (PLTRow, error) {
	cols := strings.Split(text, ",")
	if len(cols) != 7 {
		return PLTRow{}, fmt.Errorf("expected 7 columns, got %d", len(cols))
	}

	var (
		row PLTRow
		err error
	)
	if row.Latitude, err = strconv.ParseFloat(cols[0], 64); err != nil {
		return PLTRow{}, fmt.Errorf("failed to parse latitude: %w", err)
	}
	if row.Longitude, err = strconv.ParseFloat(cols[1], 64); err != nil {
		return PLTRow{}, fmt.Errorf("failed to parse longitude: %w", err)
	}
	// cols[2] is always 0 in the dataset
	if row.Altitude, err = strconv.ParseFloat(cols[3], 64); err != nil {
		return PLTRow{}, fmt.Errorf("failed to parse altitude: %w", err)
	}
	if row.DateDays, err = strconv.ParseFloat(cols[4], 64); err != nil {
		return PLTRow{}, fmt.Errorf("failed to parse date days: %w", err)
	}

	row.Timestamp = cols[5] + " " + cols[6]
	if row.Time, err = time.Parse(TimestampLayout, row.Timestamp); err != nil {
		return PLTRow{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	return row, nil
}
