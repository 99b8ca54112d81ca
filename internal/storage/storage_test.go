package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pfrederiksen/venue-scraper/internal/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testRows = []venue.Row{
	{
		Name:         "Bluebird Café",
		Description:  "A cosy nook, with \"proper\" flat whites.",
		Address:      "12 High St, London E1 6AN",
		Phone:        "+442071234567",
		Website:      "https://bluebird.example",
		OpeningHours: "9-5 daily",
		SourceLink:   "https://www.timeout.com/london/venue/bluebird-cafe",
	},
	{
		Name:        "Kiosk Corner",
		Description: "A hatch by the station.",
	},
}

func TestNew(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		s, err := New(dir)
		require.NoError(t, err)
		assert.DirExists(t, dir)
		assert.Equal(t, dir, s.Dir())
	})

	t.Run("expands home directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		s, err := New("~/venues")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "venues"), s.Dir())
		assert.DirExists(t, s.Dir())
	})
}

func TestWriteCSV(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.WriteCSV("venues.csv", testRows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "venues.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, venue.Columns, records[0])
	assert.Equal(t, testRows[0].Record(), records[1])
	assert.Equal(t, []string{"Kiosk Corner", "A hatch by the station.", "", "", "", "", ""}, records[2])
}

func TestWriteCSV_NoRows(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.WriteCSV("empty.csv", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,description,address,phone,website,opening_hours,source_link\n", string(data))
}

func TestWriteXLSX(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.WriteXLSX("venues.xlsx", testRows)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, venue.Columns, rows[0])
	assert.Equal(t, testRows[0].Record(), rows[1])
	// GetRows trims trailing empty cells
	assert.Equal(t, []string{"Kiosk Corner", "A hatch by the station."}, rows[2])
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	empty, err := s.LoadSnapshot()
	require.NoError(t, err)
	assert.Empty(t, empty.Venues)

	snap := venue.CreateSnapshot("https://www.timeout.com/london/cafes", testRows, "")
	require.NoError(t, s.SaveSnapshot(snap))

	loaded, err := s.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, snap.Venues, loaded.Venues)
	assert.Equal(t, "https://www.timeout.com/london/cafes", loaded.ArticleURL)
	assert.NotEmpty(t, loaded.UpdatedAt)

	diff := venue.Diff(loaded, testRows[:1])
	assert.Empty(t, diff.Added)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "Kiosk Corner", diff.Removed[0].Name)
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "snapshot.json"), []byte("{not json"), 0644))

	_, err = s.LoadSnapshot()
	assert.Error(t, err)
}
