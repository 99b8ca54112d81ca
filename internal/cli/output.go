package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pfrederiksen/venue-scraper/internal/scraper"
	"github.com/pfrederiksen/venue-scraper/internal/venue"
)

// nameWidth is the display width venue names are cut to in text output
const nameWidth = 50

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time              `json:"checked_at"`
	ArticleURL string                 `json:"article_url"`
	Strategy   scraper.Strategy       `json:"strategy"`
	VenueCount int                    `json:"venue_count"`
	Venues     []venue.Row            `json:"venues"`
	NewVenues  []string               `json:"new_venues,omitempty"`
	Removed    []string               `json:"removed_venues,omitempty"`
	Files      []string               `json:"files,omitempty"`
	DryRun     bool                   `json:"dry_run,omitempty"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.VenueCount == 0 {
		fmt.Fprintln(w, "No venues found.")
		return nil
	}

	isNew := make(map[string]bool, len(result.NewVenues))
	for _, name := range result.NewVenues {
		isNew[name] = true
	}

	for i, v := range result.Venues {
		marker := " "
		if isNew[v.Name] {
			marker = "*"
		}
		name := runewidth.FillRight(runewidth.Truncate(v.Name, nameWidth, "…"), nameWidth)
		fmt.Fprintf(w, "[%2d]%s %s  %s\n", i+1, marker, name, v.Address)
		if verbose {
			if v.Phone != "" {
				fmt.Fprintf(w, "       Phone: %s\n", v.Phone)
			}
			if v.Website != "" {
				fmt.Fprintf(w, "       Website: %s\n", v.Website)
			}
			if v.OpeningHours != "" {
				fmt.Fprintf(w, "       Hours: %s\n", v.OpeningHours)
			}
			if v.SourceLink != "" {
				fmt.Fprintf(w, "       Link: %s\n", v.SourceLink)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d venues (strategy: %s)\n", result.VenueCount, result.Strategy)
	if len(result.NewVenues) > 0 {
		fmt.Fprintf(w, "New since last run: %d\n", len(result.NewVenues))
	}
	for _, name := range result.Removed {
		fmt.Fprintf(w, "Gone since last run: %s\n", name)
	}

	if result.DryRun {
		fmt.Fprintln(w, "Dry run: no files written.")
		return nil
	}
	if len(result.Files) > 0 {
		fmt.Fprintln(w, "Saved:")
		for _, path := range result.Files {
			fmt.Fprintf(w, "  → %s\n", path)
		}
	}

	return nil
}
