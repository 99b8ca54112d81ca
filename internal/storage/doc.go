// Package storage writes scraped venue rows to a local data directory.
//
// Each run produces a CSV file and an XLSX workbook with the same columns in
// the same order, plus a JSON snapshot (snapshot.json) used to report which
// venues are new since the previous run. The default location is
// ~/.local/share/venue-scraper/.
package storage
