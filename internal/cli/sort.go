package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/venue-scraper/internal/venue"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByArticle SortOrder = "article"
	SortByName    SortOrder = "name"
)

func validSortOrder(s SortOrder) bool {
	return s == SortByArticle || s == SortByName
}

// sortRows orders rows in place. Article order is the order venues appear
// in the list article and leaves rows untouched.
func sortRows(rows []venue.Row, order SortOrder) {
	if order != SortByName {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
}
