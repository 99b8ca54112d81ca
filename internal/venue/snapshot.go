package venue

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
)

// Key returns a stable identifier for a venue based on its normalized name
func Key(name string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	h := sha1.New()
	h.Write([]byte(normalized))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Snapshot represents the rows of one run, keyed for comparison with the next
type Snapshot struct {
	ArticleURL string         `json:"article_url"`
	Venues     map[string]Row `json:"venues"`     // keyed by Key(Row.Name)
	UpdatedAt  string         `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Venues: make(map[string]Row),
	}
}

// CreateSnapshot builds a snapshot from a run's rows
func CreateSnapshot(articleURL string, rows []Row, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.ArticleURL = articleURL
	snap.UpdatedAt = updatedAt
	for _, r := range rows {
		snap.Venues[Key(r.Name)] = r
	}
	return snap
}

// DiffResult lists the venues that appeared or disappeared between two runs
type DiffResult struct {
	Added   []Row
	Removed []Row
}

// Diff compares the current rows against a previous snapshot. A nil or empty
// previous snapshot reports every current row as added.
func Diff(previous *Snapshot, current []Row) *DiffResult {
	result := &DiffResult{
		Added:   make([]Row, 0),
		Removed: make([]Row, 0),
	}
	if previous == nil {
		previous = NewSnapshot()
	}

	seen := make(map[string]bool, len(current))
	for _, r := range current {
		key := Key(r.Name)
		seen[key] = true
		if _, exists := previous.Venues[key]; !exists {
			result.Added = append(result.Added, r)
		}
	}

	for key, r := range previous.Venues {
		if !seen[key] {
			result.Removed = append(result.Removed, r)
		}
	}
	sort.Slice(result.Removed, func(i, j int) bool {
		return result.Removed[i].Name < result.Removed[j].Name
	})

	return result
}
