// Package sessiontest provides an in-memory session.Session for tests. It
// models just enough of a DOM to exercise lookup, visibility, keystroke and
// script semantics: nodes, routes, staleness and the scripts of package
// session.
package sessiontest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"slices"
	"strings"

	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/session"
)

// Node is a fake DOM node
type Node struct {
	ID      string
	Tag     string
	Classes []string
	Type    string // input type attribute
	Text    string
	Value   string
	Hidden  bool
	Queries []string // extra CSS or XPath queries the node answers to

	// Accept maps the keystrokes typed since the last clear to the value the
	// widget shows. nil appends keystrokes verbatim.
	Accept func(typed string) (string, bool)
	// IgnoreScript drops script-assigned values, like a framework that
	// re-renders from its own state
	IgnoreScript bool
	// DetachOnCheck removes the node when its visibility is first checked
	DetachOnCheck bool
	OnClick       func(s *Session)
	// At is the node's center in screenshot pixels
	At image.Point

	Events    []string // click, change, input, blur in dispatch order
	Highlight string

	typed string
	doc   *Document
}

// Document is the node list of one loaded URL
type Document struct {
	URL   string
	Nodes []*Node
}

// Session is a fake single-tab browser
type Session struct {
	// Routes builds a fresh document for a URL on every navigation or reload
	Routes map[string]func() []*Node
	// BeforeFind runs at the start of every FindElements call
	BeforeFind func(s *Session)

	Finds       int
	Navigations []string
	Closed      bool

	doc *Document
}

var _ session.Session = (*Session)(nil)

// New returns a session showing nodes at url
func New(url string, nodes ...*Node) *Session {
	s := &Session{Routes: map[string]func() []*Node{}}
	s.Load(url, nodes...)
	return s
}

// Load replaces the current document without consulting Routes
func (s *Session) Load(url string, nodes ...*Node) {
	if s.doc != nil {
		for _, n := range s.doc.Nodes {
			n.doc = nil
		}
	}
	s.doc = &Document{URL: url}
	for _, n := range nodes {
		s.Add(n)
	}
}

// Add appends n to the current document
func (s *Session) Add(n *Node) {
	n.doc = s.doc
	s.doc.Nodes = append(s.doc.Nodes, n)
}

// Remove detaches n; existing handles to it become stale
func (s *Session) Remove(n *Node) {
	s.doc.Nodes = slices.DeleteFunc(s.doc.Nodes, func(o *Node) bool { return o == n })
	n.doc = nil
}

// URL returns the current document URL
func (s *Session) URL() string {
	return s.doc.URL
}

// Nodes returns the nodes of the current document
func (s *Session) Nodes() []*Node {
	return s.doc.Nodes
}

// Node returns the first node of the current document with the given id
func (s *Session) Node(id string) *Node {
	for _, n := range s.doc.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	route, ok := s.Routes[url]
	if !ok {
		return fmt.Errorf("navigate %s: no route", url)
	}
	s.Navigations = append(s.Navigations, url)
	s.Load(url, route()...)
	return nil
}

func (s *Session) Reload(ctx context.Context) error {
	return s.Navigate(ctx, s.doc.URL)
}

func (s *Session) FindElements(ctx context.Context, loc locator.Locator) ([]session.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.Finds++
	if s.BeforeFind != nil {
		s.BeforeFind(s)
	}

	var out []session.Element
	for _, n := range s.doc.Nodes {
		if n.matches(loc) {
			out = append(out, &Element{s: s, n: n})
		}
	}
	return out, nil
}

func (s *Session) ExecuteScript(ctx context.Context, js string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("unsupported script without arguments: %s", js)
	}
	el, ok := args[0].(*Element)
	if !ok {
		return nil, fmt.Errorf("first script argument is %T, want element", args[0])
	}
	if err := el.live(); err != nil {
		return nil, err
	}
	n := el.n

	switch js {
	case session.ScriptClick:
		s.click(n)
		return nil, nil
	case session.ScriptScrollIntoView:
		return nil, nil
	case session.ScriptAssignValue:
		value, _ := args[1].(string)
		if !n.IgnoreScript {
			n.Value = value
		}
		n.Events = append(n.Events, "change", "input")
		return n.Value, nil
	case session.ScriptHighlight:
		n.Highlight, _ = args[1].(string)
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported script: %s", js)
	}
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, n := range s.doc.Nodes {
		fmt.Fprintf(&b, "<%s>%s</%s>", n.Tag, n.Text, n.Tag)
	}
	b.WriteString("</body></html>")
	return b.String(), nil
}

// Screenshot returns a small PNG whose pixel count encodes the node count
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	for i := range s.doc.Nodes {
		img.Set(i%64, i/64, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Session) Close() error {
	s.Closed = true
	return nil
}

func (s *Session) click(n *Node) {
	n.Events = append(n.Events, "click")
	if n.OnClick != nil {
		n.OnClick(s)
	}
}

// Element is a handle to a fake node
type Element struct {
	s *Session
	n *Node
}

var _ session.Element = (*Element)(nil)

// Node returns the node behind the handle
func (e *Element) Node() *Node {
	return e.n
}

func (e *Element) live() error {
	if e.n.doc == nil || e.n.doc != e.s.doc {
		return fmt.Errorf("%w: %s", session.ErrStale, e.n.describe())
	}
	return nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return e.n.Value, nil
}

func (e *Element) Clear(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	e.n.Value = ""
	e.n.typed = ""
	return nil
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	if err := e.live(); err != nil {
		return err
	}
	n := e.n
	for _, r := range text {
		switch string(r) {
		case session.KeyTab:
			n.Events = append(n.Events, "change", "blur")
		case session.KeyEnter:
			n.Events = append(n.Events, "submit")
		default:
			n.typed += string(r)
			if n.Accept == nil {
				n.Value += string(r)
			} else if v, ok := n.Accept(n.typed); ok {
				n.Value = v
			} else {
				n.Value = ""
			}
			n.Events = append(n.Events, "input")
		}
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := e.live(); err != nil {
		return err
	}
	if e.n.Hidden {
		return fmt.Errorf("element not interactable: %s", e.n.describe())
	}
	e.s.click(e.n)
	return nil
}

func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	if e.n.DetachOnCheck {
		e.s.Remove(e.n)
		return false, fmt.Errorf("%w: %s", session.ErrStale, e.n.describe())
	}
	return !e.n.Hidden, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return e.n.Text, nil
}

// Center returns the node's At point
func (e *Element) Center(ctx context.Context) (image.Point, error) {
	if err := e.live(); err != nil {
		return image.Point{}, err
	}
	return e.n.At, nil
}

func (n *Node) describe() string {
	if n.ID != "" {
		return n.Tag + "#" + n.ID
	}
	return n.Tag
}

func (n *Node) hasClass(c string) bool {
	return slices.Contains(n.Classes, c)
}

func (n *Node) matches(loc locator.Locator) bool {
	v := loc.Value()
	switch loc.Kind() {
	case locator.ByID:
		return n.ID == v
	case locator.ByTag:
		return n.Tag == v
	case locator.ByClass:
		return n.hasClass(v)
	case locator.ByText:
		return n.Text != "" && strings.Contains(strings.ToLower(n.Text), strings.ToLower(v))
	case locator.ByExactText:
		return n.Text != "" && strings.Contains(n.Text, v)
	case locator.ByCSS:
		return slices.Contains(n.Queries, v) || n.matchCSS(v)
	case locator.ByXPath:
		return slices.Contains(n.Queries, v)
	}
	return false
}

// matchCSS understands tag, #id, .class chains and one [type='x'] suffix
func (n *Node) matchCSS(sel string) bool {
	head, attr, hasAttr := strings.Cut(sel, "[")
	if strings.ContainsAny(head, " >:,") {
		return false
	}
	if hasAttr {
		name, val, ok := strings.Cut(strings.TrimSuffix(attr, "]"), "=")
		if !ok || name != "type" {
			return false
		}
		if n.Type != strings.Trim(val, `'"`) {
			return false
		}
	}

	tag, rest := head, ""
	if i := strings.IndexAny(head, ".#"); i >= 0 {
		tag, rest = head[:i], head[i:]
	}
	if tag != "" && tag != n.Tag {
		return false
	}
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		name := rest
		if i := strings.IndexAny(rest, ".#"); i >= 0 {
			name, rest = rest[:i], rest[i:]
		} else {
			rest = ""
		}
		if kind == '#' && n.ID != name {
			return false
		}
		if kind == '.' && !n.hasClass(name) {
			return false
		}
	}
	return true
}
