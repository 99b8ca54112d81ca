package scraper

import (
	"regexp"
	"strings"
)

var ordinalPrefix = regexp.MustCompile(`^(?:\d+\.\s*)+`)

// labelPrefixes start field lines, which are never venue names
var labelPrefixes = []string{"address:", "opening hour", "why we love it:", "order this:"}

// Span extracts the text between a start label and the nearest of a set of end
// labels, or the end of the text when none follows. Labels are regular
// expression fragments matched case-insensitively across newlines.
type Span struct {
	re *regexp.Regexp
}

// NewSpan compiles a span starting at start and ending at the first of ends
func NewSpan(start string, ends ...string) *Span {
	stop := `\z`
	if len(ends) > 0 {
		stop = `(?:` + strings.Join(ends, "|") + `|\z)`
	}
	return &Span{re: regexp.MustCompile(`(?is)` + start + `\s*(.*?)` + stop)}
}

// Find returns the trimmed text inside the first match, or "" when start is absent
func (s *Span) Find(text string) string {
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Between is a one-off Span over literal labels
func Between(text, start string, ends ...string) string {
	quoted := make([]string, len(ends))
	for i, e := range ends {
		quoted[i] = regexp.QuoteMeta(e)
	}
	return NewSpan(regexp.QuoteMeta(start), quoted...).Find(text)
}

// StripOrdinal removes leading list numbering such as "1. " from a name.
// Applying it twice gives the same result as applying it once.
func StripOrdinal(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimSpace(ordinalPrefix.ReplaceAllString(name, ""))
}

// fields is the set of label spans both extractors read venue fields with
type fields struct {
	marker       *regexp.Regexp
	description  *Span
	whyWeLoveIt  *Span
	address      *Span
	openingHours *Span
	inlineHours  *Span
}

func newFields(marker string) fields {
	m := regexp.QuoteMeta(marker)
	return fields{
		marker:       regexp.MustCompile(`(?i)` + m),
		description:  NewSpan(m, `Why we love it:`, `Order this:`, `Address:`),
		whyWeLoveIt:  NewSpan(`Why we love it:`, `Order this:`, `Address:`),
		address:      NewSpan(`Address:`, `Opening hours?:`),
		openingHours: NewSpan(`Opening hours?:`, `\n[ \t]*\n`),
		inlineHours:  NewSpan(`Opening hours?:`, `\.(?:\s|\z)`, `\n`),
	}
}

// parsed holds the label-delimited fields of one venue's text
type parsed struct {
	description  string
	address      string
	openingHours string
}

// parse reads description, address and opening hours from a section's text
func (f fields) parse(text string) parsed {
	var p parsed
	p.description = f.description.Find(text)
	if p.description == "" {
		p.description = f.whyWeLoveIt.Find(text)
	}
	p.address = firstLine(f.address.Find(text))
	p.openingHours = strings.Join(strings.Fields(f.openingHours.Find(text)), " ")
	return p
}

// parseInline reads fields from heading sibling text, where each sibling sits
// on its own line and the hours end at the first full stop.
func (f fields) parseInline(text string) parsed {
	var p parsed
	if f.marker.MatchString(text) {
		p.description = collapseSpace(f.description.Find(text))
	}
	if p.description == "" {
		p.description = collapseSpace(f.whyWeLoveIt.Find(text))
	}
	p.address = firstLine(f.address.Find(text))
	p.openingHours = collapseSpace(f.inlineHours.Find(text))
	return p
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func hasLabelPrefix(lower string) bool {
	for _, p := range labelPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
