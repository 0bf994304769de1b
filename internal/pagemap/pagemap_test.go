package pagemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryTruncates(t *testing.T) {
	m := &PageMap{
		URL:   "https://example.test/admin",
		Title: "Admin",
		Elements: []Element{
			{Selector: "#email", Type: "email"},
			{Selector: "#password", Type: "password"},
			{Selector: "button.submit", Type: "button", Text: "Belépés"},
		},
	}

	got := m.Summary(2)
	assert.Contains(t, got, `https://example.test/admin ("Admin"): 3 elements`)
	assert.Contains(t, got, "#email")
	assert.Contains(t, got, "... 1 more")
	assert.NotContains(t, got, "button.submit")
}

func TestSummaryNil(t *testing.T) {
	var m *PageMap
	assert.Empty(t, m.Summary(5))
}

func TestClickable(t *testing.T) {
	m := &PageMap{
		Elements: []Element{
			{Selector: "#a", Type: "button"},
			{Selector: "#b", Type: "text"},
			{Selector: "a.more", Type: "link", Text: "More"},
		},
		Navigation: []NavItem{{Selector: "nav a:nth-of-type(3)", Text: "Események", Href: "/admin#events"}},
	}

	got := m.Clickable()
	if assert.Len(t, got, 3) {
		assert.Equal(t, "#a", got[0].Selector)
		assert.Equal(t, "a.more", got[1].Selector)
		assert.Equal(t, Element{Selector: "nav a:nth-of-type(3)", Type: "link", Text: "Események"}, got[2])
	}
}
