package scraper

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/venue-scraper/internal/venue"
	"golang.org/x/net/html"
)

// ExtractByHeadings treats every h2-h4 heading as a venue and reads its fields
// from the sibling nodes that follow it. Generic headings are skipped, names are
// deduplicated case-insensitively, and at most MaxItems candidates are returned.
func (e *Extractor) ExtractByHeadings(doc *goquery.Document, base *url.URL) []venue.Candidate {
	candidates := make([]venue.Candidate, 0)
	seen := make(map[string]bool)

	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := collapseSpace(Text(sel, " "))
		if name == "" || utf8.RuneCountInString(name) > e.rules.MaxHeadingLength {
			return true
		}
		if containsAny(strings.ToLower(name), e.rules.HeadingDenylist) {
			return true
		}

		name = StripOrdinal(name)
		key := strings.ToLower(name)
		if seen[key] || len(strings.Fields(name)) < e.rules.MinNameWords {
			return true
		}
		seen[key] = true

		node := sel.Get(0)
		pieces := e.siblingText(node)
		p := e.fields.parseInline(strings.Join(pieces, "\n"))
		if p.description == "" {
			flat := strings.Join(pieces, " ")
			if utf8.RuneCountInString(flat) > e.rules.FallbackMinText {
				p.description = truncateRunes(flat, e.rules.FallbackDescriptionMax)
			}
		}
		if p.description == "" {
			return true
		}

		candidates = append(candidates, venue.Candidate{
			Name:         name,
			Description:  p.description,
			Address:      p.address,
			OpeningHours: p.openingHours,
			SourceLink:   e.headingLink(node, base),
		})
		return len(candidates) < e.rules.MaxItems
	})

	return candidates
}

// siblingText collects the text of up to MaxSiblingNodes non-empty siblings
// after n, stopping at the next heading of any level.
func (e *Extractor) siblingText(n *html.Node) []string {
	pieces := make([]string, 0, e.rules.MaxSiblingNodes)
	for cur := n.NextSibling; cur != nil && len(pieces) < e.rules.MaxSiblingNodes; cur = cur.NextSibling {
		var text string
		switch cur.Type {
		case html.ElementNode:
			if isHeading(cur) {
				return pieces
			}
			text = collapseSpace(strings.Join(appendText(nil, cur), " "))
		case html.TextNode:
			text = collapseSpace(cur.Data)
		default:
			continue
		}
		if text != "" {
			pieces = append(pieces, text)
		}
	}
	return pieces
}

// headingLink uses the heading's own anchor, else the next anchor in the
// document. Only venue paths and relative links are accepted, so site
// navigation and external links are not picked up.
func (e *Extractor) headingLink(n *html.Node, base *url.URL) string {
	anchor := anchorNear(n)
	if anchor == nil {
		return ""
	}
	href := strings.TrimSpace(attr(anchor, "href"))
	if href == "" {
		return ""
	}
	if !strings.Contains(href, e.rules.VenuePathMarker) && isAbsolute(href) {
		return ""
	}
	return resolveLink(base, href)
}
