// Package venue provides the record types produced while scraping a venue list article.
//
// A Candidate is what an extractor reads off the list page, a Detail is what the
// enricher recovers from a venue's own page, and a Row is the merged record handed
// to the output writers. Columns fixes the order every writer must preserve.
package venue
