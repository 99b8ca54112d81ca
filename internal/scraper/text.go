package scraper

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrEmptyContent is returned when a document has no content region
var ErrEmptyContent = errors.New("no content region found")

// Block is a visible text block attributed to the node it was read from
type Block struct {
	Text string
	Node *goquery.Selection
}

// ContentRegion returns the first main landmark, else the first article, else the body
func ContentRegion(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"main", "article", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("body")
}

// Normalize returns the content region's text blocks in document order.
// Blocks come from p, div, section and li nodes; a block is kept only when its
// text is longer than minLength characters. Nodes nested inside a kept block are
// skipped since their text is already part of it.
func Normalize(doc *goquery.Document, minLength int) ([]Block, error) {
	region := ContentRegion(doc)
	if region.Length() == 0 {
		return nil, ErrEmptyContent
	}

	kept := make(map[*html.Node]bool)
	blocks := make([]Block, 0)
	region.Find("p, div, section, li").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if insideKept(node, kept) {
			return
		}
		text := Text(sel, "\n")
		if utf8.RuneCountInString(text) <= minLength {
			return
		}
		kept[node] = true
		blocks = append(blocks, Block{Text: text, Node: sel})
	})
	return blocks, nil
}

func insideKept(n *html.Node, kept map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if kept[p] {
			return true
		}
	}
	return false
}

// Text returns the visible text under sel. Each text node is trimmed, empty
// ones are dropped, and the rest are joined with sep. Script and style content
// is never visible and is skipped.
func Text(sel *goquery.Selection, sep string) string {
	parts := make([]string, 0)
	for _, n := range sel.Nodes {
		parts = appendText(parts, n)
	}
	return strings.Join(parts, sep)
}

func appendText(parts []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			parts = append(parts, t)
		}
		return parts
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return parts
		}
	case html.CommentNode:
		return parts
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = appendText(parts, c)
	}
	return parts
}

// collapseSpace folds every whitespace run into a single space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n characters
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
