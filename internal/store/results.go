package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// resultColumns is the schema the downstream plotting pipeline reads.
// Column names are load-bearing; do not rename.
var resultColumns = []string{"id", "circles", "vms_max", "distribution"}

// ResultRow is one line of the shared results table. VMSMax is filled
// in by the external solver when available; a zero value means the
// solve has not run for this geometry.
type ResultRow struct {
	ID           string
	Circles      int
	VMSMax       float64
	Distribution float64 // area-fraction percentage
}

// ResultsPath returns the shared CSV path.
func (fs *FSStore) ResultsPath() string {
	return filepath.Join(fs.baseDir, "data.csv")
}

// AppendResult appends a row to the results CSV, writing the header
// first when the file does not exist yet. Appends are serialized so
// concurrent jobs cannot interleave partial rows.
func (fs *FSStore) AppendResult(row ResultRow) error {
	fs.resultsMu.Lock()
	defer fs.resultsMu.Unlock()

	path := fs.ResultsPath()
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(resultColumns); err != nil {
			return fmt.Errorf("failed to write results header: %w", err)
		}
	}

	record := []string{
		row.ID,
		strconv.Itoa(row.Circles),
		strconv.FormatFloat(row.VMSMax, 'g', -1, 64),
		strconv.FormatFloat(row.Distribution, 'g', -1, 64),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("failed to write results row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush results file: %w", err)
	}
	return nil
}

// ReadResults loads every row of the results table. Reads share the
// append mutex so a row being flushed is never observed half-written.
func (fs *FSStore) ReadResults() ([]ResultRow, error) {
	fs.resultsMu.Lock()
	defer fs.resultsMu.Unlock()

	f, err := os.Open(fs.ResultsPath())
	if os.IsNotExist(err) {
		return []ResultRow{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	if len(records) == 0 {
		return []ResultRow{}, nil
	}

	var rows []ResultRow
	for _, rec := range records[1:] {
		if len(rec) != len(resultColumns) {
			return nil, fmt.Errorf("results row has %d columns, expected %d", len(rec), len(resultColumns))
		}

		circles, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("invalid circles value %q: %w", rec[1], err)
		}
		vms, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vms_max value %q: %w", rec[2], err)
		}
		dist, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid distribution value %q: %w", rec[3], err)
		}

		rows = append(rows, ResultRow{
			ID:           rec[0],
			Circles:      circles,
			VMSMax:       vms,
			Distribution: dist,
		})
	}
	return rows, nil
}
