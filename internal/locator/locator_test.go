package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryLowering(t *testing.T) {
	tests := []struct {
		loc  Locator
		want Query
	}{
		{ID("liga"), Query{CSS: `[id="liga"]`}},
		{CSS("button[type='submit']"), Query{CSS: "button[type='submit']"}},
		{Class("menu-button"), Query{CSS: ".menu-button"}},
		{Tag("input"), Query{CSS: "input"}},
		{XPath("//button[contains(text(), 'Save')]"), Query{XPath: "//button[contains(text(), 'Save')]"}},
	}
	for _, tt := range tests {
		t.Run(tt.loc.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.Query())
		})
	}
}

func TestTextLocatorIgnoresCase(t *testing.T) {
	q := Text("Események").Query()
	assert.Empty(t, q.CSS)
	assert.Equal(t, "//*[contains(translate(text(), 'ESEMÉNYEK', 'események'), 'események')]", q.XPath)
}

func TestExactTextKeepsCase(t *testing.T) {
	l := ExactText("esemény")
	assert.Equal(t, "exact-text=esemény", l.String())
	assert.Equal(t, Query{XPath: "//*[contains(text(), 'esemény')]"}, l.Query())
}

func TestXPathLiteralQuotes(t *testing.T) {
	assert.Equal(t, `'plain'`, xpathLiteral("plain"))
	assert.Equal(t, `"it's"`, xpathLiteral("it's"))
	assert.Equal(t, `concat('a', "'", 'b"c')`, xpathLiteral(`a'b"c`))
}

func TestIDEscapesQuotes(t *testing.T) {
	assert.Equal(t, `[id="a\"b"]`, ID(`a"b`).Query().CSS)
}

func TestCandidatesString(t *testing.T) {
	c := Of(ID("email"), Tag("button"))
	assert.Equal(t, "[id=email, tag=button]", c.String())
	assert.Equal(t, ByTag, c[1].Kind())
	assert.Equal(t, "button", c[1].Value())
}

func TestIsZero(t *testing.T) {
	var zero Locator
	assert.True(t, zero.IsZero())
	assert.False(t, Tag("button").IsZero())
}
