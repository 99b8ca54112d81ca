package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/venue-scraper/internal/venue"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet rows are written to in XLSX output
const SheetName = "Venues"

const snapshotName = "snapshot.json"

// Storage handles persistence of venue rows
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// WriteCSV writes rows with a header line to name inside the data directory
// and returns the file's path
func (s *Storage) WriteCSV(name string, rows []venue.Row) (string, error) {
	path := filepath.Join(s.dataDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(venue.Columns); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing csv: %w", err)
	}
	return path, nil
}

// WriteXLSX writes rows with a header line to a single-sheet workbook
// and returns the file's path
func (s *Storage) WriteXLSX(name string, rows []venue.Row) (string, error) {
	path := filepath.Join(s.dataDir, name)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return "", fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(venue.Columns))
	for i, c := range venue.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("writing xlsx header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		record := r.Record()
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return "", fmt.Errorf("writing xlsx row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving xlsx: %w", err)
	}
	return path, nil
}

// LoadSnapshot loads the previous run's snapshot
func (s *Storage) LoadSnapshot() (*venue.Snapshot, error) {
	path := filepath.Join(s.dataDir, snapshotName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No previous run
			return venue.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot venue.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Venues == nil {
		snapshot.Venues = make(map[string]venue.Row)
	}

	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk
func (s *Storage) SaveSnapshot(snapshot *venue.Snapshot) error {
	path := filepath.Join(s.dataDir, snapshotName)

	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}
