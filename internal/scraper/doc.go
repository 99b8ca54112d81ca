// Package scraper extracts venue candidates from a list article.
//
// Extraction runs as a two-step pipeline. The section strategy flattens the
// article's content blocks into one text stream, splits it on a recurring
// marker phrase ("What is it?") and reads each venue's fields from the text
// between known labels. When that yields nothing, the heading strategy treats
// every h2-h4 as a venue boundary and parses the sibling text that follows it
// with the same field patterns.
package scraper
