// Package pipeline runs one scrape: fetch the list article, extract venue
// candidates, enrich each from its own page and merge the results into rows.
//
// The run is strictly sequential. A failed article fetch or an article with
// no venues aborts the run; enrichment problems never do.
package pipeline
