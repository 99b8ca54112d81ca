// Package cli implements the command-line interface for venue-scraper.
//
// The cli package provides the Cobra root command. It loads configuration,
// builds the logger, runs the scrape pipeline, writes CSV and XLSX output,
// compares the run with the previous snapshot and prints a summary as text
// or JSON.
package cli
