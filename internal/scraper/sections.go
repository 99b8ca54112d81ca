package scraper

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/venue-scraper/internal/logger"
	"github.com/pfrederiksen/venue-scraper/internal/venue"
)

// section is the text of one venue between two marker phrases
type section struct {
	name string
	body string
}

// ExtractSections runs the marker-phrase strategy over doc.
// Links are resolved against base.
func (e *Extractor) ExtractSections(doc *goquery.Document, base *url.URL) []venue.Candidate {
	blocks, err := Normalize(doc, e.rules.MinBlockLength)
	if err != nil {
		e.log.Error("Could not find main content area", nil, err)
		return nil
	}

	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}

	candidates := e.ParseSections(strings.Join(texts, "\n"))
	region := ContentRegion(doc)
	for i := range candidates {
		candidates[i].SourceLink = e.sectionLink(region, candidates[i].Name, base)
	}
	return candidates
}

// ParseSections splits text on the marker phrase and parses each section.
// Sections without both a name and a description are dropped. At most
// MaxItems candidates are returned, in text order. SourceLink is left empty.
func (e *Extractor) ParseSections(text string) []venue.Candidate {
	candidates := make([]venue.Candidate, 0)
	for _, s := range e.splitSections(text) {
		p := e.fields.parse(s.body)
		c := venue.Candidate{
			Name:         s.name,
			Description:  p.description,
			Address:      p.address,
			OpeningHours: p.openingHours,
		}
		if !c.Valid() {
			continue
		}
		candidates = append(candidates, c)
		if len(candidates) >= e.rules.MaxItems {
			break
		}
	}
	return candidates
}

// splitSections cuts text at every marker phrase. Text before the first marker
// only contributes the first venue's name. A venue's name is the nearest
// qualifying line above its marker; that line is cut from the previous
// section's body so it doesn't leak into that venue's fields. A cut that would
// leave the previous section without a description is refused, and the venue
// is then named from its own first lines.
func (e *Extractor) splitSections(text string) []section {
	markers := e.fields.marker.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return nil
	}

	type heading struct {
		name string
		at   int
	}
	headings := make([]heading, len(markers))
	for i, m := range markers {
		from := 0
		if i > 0 {
			from = markers[i-1][1]
		}
		name, at := e.nameBefore(text[from:m[0]])
		if at >= 0 {
			at += from
			if i > 0 && e.emptiesSection(text[markers[i-1][0]:m[0]], at-markers[i-1][0]) {
				name, at = "", -1
			}
		}
		headings[i] = heading{name: name, at: at}
	}

	sections := make([]section, 0, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
			if headings[i+1].at >= 0 {
				end = headings[i+1].at
			}
		}
		body := text[m[0]:end]
		name := headings[i].name
		if name == "" {
			name = e.nameWithin(body)
		}
		sections = append(sections, section{name: name, body: body})
	}
	return sections
}

// nameBefore scans the last NameScanLines non-empty lines of chunk, nearest
// first, and returns the first that looks like a venue name together with the
// offset of its line in chunk. The scan stops at a field label line, since
// anything above it belongs to the previous venue. The offset is -1 when
// nothing qualifies.
func (e *Extractor) nameBefore(chunk string) (string, int) {
	lines := strings.Split(chunk, "\n")
	offsets := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line) + 1
	}

	seen := 0
	for i := len(lines) - 1; i >= 0 && seen < e.rules.NameScanLines; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		seen++
		if hasLabelPrefix(strings.ToLower(line)) {
			break
		}
		if e.isName(line) {
			return StripOrdinal(line), offsets[i]
		}
	}
	return "", -1
}

// emptiesSection reports whether cutting section at offset would lose a
// description the uncut section has.
func (e *Extractor) emptiesSection(section string, offset int) bool {
	if e.fields.parse(section).description == "" {
		return false
	}
	return e.fields.parse(section[:offset]).description == ""
}

// nameWithin scans the first NameScanLines lines of a section body
func (e *Extractor) nameWithin(body string) string {
	lines := strings.Split(body, "\n")
	if len(lines) > e.rules.NameScanLines {
		lines = lines[:e.rules.NameScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if e.isName(line) {
			return StripOrdinal(line)
		}
	}
	return ""
}

// isName reports whether a trimmed line can be a venue name
func (e *Extractor) isName(line string) bool {
	if line == "" || utf8.RuneCountInString(line) >= e.rules.MaxNameLength {
		return false
	}
	if e.fields.marker.MatchString(line) {
		return false
	}
	lower := strings.ToLower(line)
	if containsAny(lower, e.rules.NameDenylist) || hasLabelPrefix(lower) {
		return false
	}
	return len(strings.Fields(line)) >= e.rules.MinNameWords
}

// sectionLink finds the venue's page by matching its name against headings and
// anchors in the content region. A matching anchor's own href wins; otherwise
// an anchor nested in or following the match is used when its href looks like
// a venue page for this name.
func (e *Extractor) sectionLink(region *goquery.Selection, name string, base *url.URL) string {
	if name == "" {
		return ""
	}
	lowerName := strings.ToLower(name)
	slug := strings.ReplaceAll(lowerName, " ", "-")

	var link string
	region.Find("h2, h3, h4, a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(collapseSpace(Text(sel, " ")))
		if text == "" || !(strings.Contains(text, lowerName) || strings.Contains(lowerName, text)) {
			return true
		}

		if goquery.NodeName(sel) == "a" {
			if href := strings.TrimSpace(sel.AttrOr("href", "")); href != "" {
				link = resolveLink(base, href)
				return link == ""
			}
		}

		anchor := anchorNear(sel.Get(0))
		if anchor == nil {
			return true
		}
		href := strings.TrimSpace(attr(anchor, "href"))
		if href == "" {
			return true
		}
		if strings.Contains(href, e.rules.VenuePathMarker) || strings.Contains(strings.ToLower(href), slug) {
			link = resolveLink(base, href)
			return link == ""
		}
		return true
	})

	if link == "" {
		e.log.Debug("No link found for venue", logger.Fields{"name": name})
	}
	return link
}
