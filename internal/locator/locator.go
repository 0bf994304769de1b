// Package locator describes how to find DOM nodes independent of the browser
// backend. A Locator is one of a closed set of kinds and lowers to either a
// CSS selector or an XPath expression.
package locator

import (
	"fmt"
	"strings"
)

// Kind identifies the selection rule of a Locator
type Kind int

const (
	ByID Kind = iota
	ByCSS
	ByXPath
	ByClass
	ByTag
	ByText
	ByExactText
)

func (k Kind) String() string {
	switch k {
	case ByID:
		return "id"
	case ByCSS:
		return "css"
	case ByXPath:
		return "xpath"
	case ByClass:
		return "class"
	case ByTag:
		return "tag"
	case ByText:
		return "text"
	case ByExactText:
		return "exact-text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Locator is an immutable selection rule
type Locator struct {
	kind  Kind
	value string
}

func ID(id string) Locator { return Locator{kind: ByID, value: id} }
func CSS(selector string) Locator { return Locator{kind: ByCSS, value: selector} }
func XPath(expr string) Locator { return Locator{kind: ByXPath, value: expr} }
func Class(name string) Locator { return Locator{kind: ByClass, value: name} }
func Tag(name string) Locator { return Locator{kind: ByTag, value: name} }
func Text(substring string) Locator { return Locator{kind: ByText, value: substring} }

// ExactText matches elements whose own text contains substring with the same
// letter case
func ExactText(substring string) Locator { return Locator{kind: ByExactText, value: substring} }

func (l Locator) Kind() Kind { return l.kind }
func (l Locator) Value() string { return l.value }
func (l Locator) String() string { return l.kind.String() + "=" + l.value }

// IsZero reports whether l is the zero Locator, which selects nothing
func (l Locator) IsZero() bool { return l == Locator{} }

// Query is the backend-facing form of a Locator. Exactly one field is set.
type Query struct {
	CSS   string
	XPath string
}

// Query lowers the locator to a CSS selector or an XPath expression
func (l Locator) Query() Query {
	switch l.kind {
	case ByID:
		return Query{CSS: `[id="` + escapeAttr(l.value) + `"]`}
	case ByCSS:
		return Query{CSS: l.value}
	case ByClass:
		return Query{CSS: "." + l.value}
	case ByTag:
		return Query{CSS: l.value}
	case ByXPath:
		return Query{XPath: l.value}
	case ByText:
		return Query{XPath: textContains(l.value)}
	case ByExactText:
		return Query{XPath: "//*[contains(text(), " + xpathLiteral(l.value) + ")]"}
	default:
		return Query{CSS: l.value}
	}
}

// textContains matches any element whose own text contains s, ignoring case
// for the letters of s.
func textContains(s string) string {
	lower := strings.ToLower(s)
	upper := strings.ToUpper(s)
	return fmt.Sprintf("//*[contains(translate(text(), %s, %s), %s)]",
		xpathLiteral(upper), xpathLiteral(lower), xpathLiteral(lower))
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(quoted, `, "'", `) + ")"
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Candidates is an ordered list of locators for one logical target. Earlier
// entries are preferred.
type Candidates []Locator

// Of builds a candidate list from the given locators
func Of(locs ...Locator) Candidates {
	return Candidates(locs)
}

func (c Candidates) String() string {
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = l.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
