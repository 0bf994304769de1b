// Package session defines the browser capability consumed by the resolver,
// the field writer and the scenario, plus a go-rod backed implementation.
package session

import (
	"context"
	"errors"

	"github.com/v0xg/eventprobe/internal/locator"
)

// Control characters understood by Element.SendKeys
const (
	KeyTab   = "\t"
	KeyEnter = "\n"
)

var (
	// ErrStale is returned when a handle's node was removed or replaced
	ErrStale = errors.New("stale element reference")
	// ErrNoSuchElement is returned by lookups that require a match
	ErrNoSuchElement = errors.New("no such element")
)

// IsTransient reports whether a lookup failure should be retried rather than
// surfaced
func IsTransient(err error) bool {
	return errors.Is(err, ErrStale) || errors.Is(err, ErrNoSuchElement)
}

// Session is a single browser tab owned by one caller
type Session interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	// FindElements returns matches in document order, or an empty slice
	FindElements(ctx context.Context, loc locator.Locator) ([]Element, error)
	// ExecuteScript calls the JS function expression js with args as its
	// parameters and returns its JSON-decoded result. Element args are passed
	// as node references, anything else as JSON values.
	ExecuteScript(ctx context.Context, js string, args ...any) (any, error)
	PageSource(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Element is a handle to a live DOM node. It is invalid after navigation.
type Element interface {
	Value(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	IsDisplayed(ctx context.Context) (bool, error)
	Text(ctx context.Context) (string, error)
}

// Scripts shared by the core. Each is a function expression for ExecuteScript.
const (
	// ScriptClick clicks (el) programmatically, bypassing hit testing
	ScriptClick = `(el) => el.click()`

	// ScriptScrollIntoView scrolls (el) to the top of the viewport
	ScriptScrollIntoView = `(el) => el.scrollIntoView(true)`

	// ScriptAssignValue sets (el, value) as a property and fires the events
	// frameworks listen for instead of property mutation
	ScriptAssignValue = `(el, value) => {
	el.value = value;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	el.dispatchEvent(new Event('input', { bubbles: true }));
	return el.value;
}`

	// ScriptHighlight outlines (el, color) for screenshots
	ScriptHighlight = `(el, color) => { el.style.border = '3px solid ' + color; }`
)
