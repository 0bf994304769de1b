// Package pagemap extracts a compact description of the visible interactive
// elements of a page, used for diagnostics and by the locator advisor.
package pagemap

import (
	"fmt"
	"strings"
)

// PageMap represents the analyzed structure of a web page
type PageMap struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Elements   []Element `json:"elements"`
	Navigation []NavItem `json:"navigation"`
}

// Element represents an interactive element on the page
type Element struct {
	Selector    string `json:"selector"`
	Type        string `json:"type"` // button, link, select, checkbox, radio or the input type
	Text        string `json:"text,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
}

// NavItem represents a navigation link
type NavItem struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
	Href     string `json:"href"`
}

// Summary renders at most limit elements, one per line, for log output
func (m *PageMap) Summary(limit int) string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%q): %d elements", m.URL, m.Title, len(m.Elements))
	for i, el := range m.Elements {
		if i == limit {
			fmt.Fprintf(&b, "\n  ... %d more", len(m.Elements)-limit)
			break
		}
		fmt.Fprintf(&b, "\n  %-8s %s", el.Type, el.Selector)
		if el.Text != "" {
			fmt.Fprintf(&b, " %q", el.Text)
		}
	}
	return b.String()
}

// Clickable returns the buttons and links of the page in page order,
// followed by the navigation items
func (m *PageMap) Clickable() []Element {
	var out []Element
	for _, el := range m.Elements {
		if el.Type == "button" || el.Type == "link" {
			out = append(out, el)
		}
	}
	for _, nav := range m.Navigation {
		out = append(out, Element{Selector: nav.Selector, Type: "link", Text: nav.Text})
	}
	return out
}
