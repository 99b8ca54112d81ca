package scraper

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// resolveLink makes href absolute against base. Links that land on another
// scheme or host are rejected and yield "".
func resolveLink(base *url.URL, href string) string {
	if base == nil {
		return ""
	}
	u, err := base.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return ""
	}
	return u.String()
}

// isAbsolute mirrors how list pages mark external links: by a URL scheme prefix
func isAbsolute(href string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "http")
}

// anchorNear returns the first anchor inside n, else the first anchor after n
// in document order.
func anchorNear(n *html.Node) *html.Node {
	if a := anchorWithin(n); a != nil {
		return a
	}
	return anchorAfter(n)
}

// anchorWithin returns the first anchor among n's descendants
func anchorWithin(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, "a") {
			return c
		}
		if a := anchorWithin(c); a != nil {
			return a
		}
	}
	return nil
}

// anchorAfter returns the first anchor that starts after n's subtree ends
func anchorAfter(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		for sib := cur.NextSibling; sib != nil; sib = sib.NextSibling {
			if isElement(sib, "a") {
				return sib
			}
			if a := anchorWithin(sib); a != nil {
				return a
			}
		}
	}
	return nil
}

func isElement(n *html.Node, name string) bool {
	return n.Type == html.ElementNode && n.Data == name
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
		return false
	}
	return n.Data[1] >= '1' && n.Data[1] <= '6'
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
