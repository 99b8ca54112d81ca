// Package enrich recovers contact details from a venue's own page.
//
// The list article rarely carries phone numbers or websites, so each venue's
// page is fetched and read with an ordered chain of selector and regular
// expression heuristics. Enrichment is best effort: any failure is logged and
// yields an empty Detail.
package enrich

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/venue-scraper/internal/logger"
	"github.com/pfrederiksen/venue-scraper/internal/scraper"
	"github.com/pfrederiksen/venue-scraper/internal/venue"
)

// AddressWindow is how many characters either side of a postcode are kept
const AddressWindow = 80

var (
	phonePattern    = regexp.MustCompile(`(\+44\s?\d[\d\s\-]{7,}\d|0\d{2,4}[\s\-]?\d{3,4}[\s\-]?\d{3,4})`)
	postcodePattern = regexp.MustCompile(`(?i)[A-Z]{1,2}\d{1,2}[A-Z]?\s*\d[A-Z]{2}`)

	websiteSelectors = []string{`a[rel*="nofollow"]`, `a[target="_blank"]`, `a.external`}
)

// Fetcher retrieves a page body
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Enricher reads contact details off venue pages
type Enricher struct {
	fetcher   Fetcher
	ownDomain string
	window    int
	log       logger.Logger
}

// New creates an Enricher. ownDomain is the list site's domain; website links
// containing it are never taken as the venue's own site.
func New(fetcher Fetcher, ownDomain string, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.Nop()
	}
	return &Enricher{
		fetcher:   fetcher,
		ownDomain: strings.ToLower(ownDomain),
		window:    AddressWindow,
		log:       log,
	}
}

// DomainOf returns the host of rawURL without a leading "www."
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Enrich fetches the venue page at pageURL and extracts its contact details.
// It never fails: fetch and parse errors are logged and an empty Detail returned.
func (e *Enricher) Enrich(ctx context.Context, pageURL string) venue.Detail {
	if pageURL == "" {
		return venue.Detail{}
	}

	body, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		e.log.Warn("Venue enrichment failed", logger.Fields{
			"url":   pageURL,
			"stage": "fetch",
			"error": err.Error(),
		})
		return venue.Detail{}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		e.log.Warn("Venue enrichment failed", logger.Fields{
			"url":   pageURL,
			"stage": "parse",
			"error": err.Error(),
		})
		return venue.Detail{}
	}

	return e.Extract(doc)
}

// Extract reads phone, website and address from a parsed venue page
func (e *Enricher) Extract(doc *goquery.Document) venue.Detail {
	var d venue.Detail

	d.Phone = telLink(doc)
	d.Website = e.website(doc)

	text := scraper.Text(doc.Selection, " ")
	if addr := doc.Find("address").First(); addr.Length() > 0 {
		d.Address = strings.TrimSpace(scraper.Text(addr, " "))
	} else {
		d.Address = postcodeWindow(text, e.window)
	}

	if d.Phone == "" {
		d.Phone = strings.TrimSpace(phonePattern.FindString(text))
	}
	return d
}

// telLink returns the number of the first tel: link
func telLink(doc *goquery.Document) string {
	href, ok := doc.Find(`a[href^="tel:"]`).First().Attr("href")
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
}

// website checks each external-link selector in order and takes the first
// match that is absolute and off the list site's domain.
func (e *Enricher) website(doc *goquery.Document) string {
	for _, selector := range websiteSelectors {
		href := strings.TrimSpace(doc.Find(selector).First().AttrOr("href", ""))
		if href == "" {
			continue
		}
		if e.ownDomain != "" && strings.Contains(strings.ToLower(href), e.ownDomain) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(href), "http") {
			return href
		}
	}
	return ""
}

// postcodeWindow approximates an address as the text around the first UK postcode
func postcodeWindow(text string, window int) string {
	loc := postcodePattern.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	runes := []rune(text)
	at := utf8.RuneCountInString(text[:loc[0]])
	start := at - window
	if start < 0 {
		start = 0
	}
	end := at + window
	if end > len(runes) {
		end = len(runes)
	}
	return strings.TrimSpace(string(runes[start:end]))
}
