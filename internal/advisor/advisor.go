// Package advisor asks a language model which element of the current page
// performs a named action. It backs the resolver when every known locator
// for a control has failed.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/pagemap"
)

// ErrNoSuggestion is returned when the model finds no fitting element
var ErrNoSuggestion = errors.New("no suggestion")

// Snapshotter describes the current page
type Snapshotter interface {
	Snapshot(ctx context.Context) (*pagemap.PageMap, error)
}

// Advisor suggests locators from a page snapshot
type Advisor struct {
	Provider Provider
	Pages    Snapshotter
	Logger   *zap.Logger
}

// New returns an advisor querying p about the pages of s
func New(p Provider, s Snapshotter, log *zap.Logger) *Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{Provider: p, Pages: s, Logger: log}
}

// Suggest returns a CSS locator for the element that performs action. The
// selector must be one of the snapshot's clickable elements.
func (a *Advisor) Suggest(ctx context.Context, action string) (locator.Locator, error) {
	var none locator.Locator

	m, err := a.Pages.Snapshot(ctx)
	if err != nil {
		return none, fmt.Errorf("snapshot page: %w", err)
	}
	elements := m.Clickable()
	if len(elements) == 0 {
		return none, fmt.Errorf("%w: no clickable elements on %s", ErrNoSuggestion, m.URL)
	}

	prompt, err := buildUserPrompt(m, elements, action)
	if err != nil {
		return none, err
	}
	text, err := a.Provider.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return none, err
	}
	s, err := parseSuggestion(text)
	if err != nil {
		return none, fmt.Errorf("failed to parse suggestion: %w\nResponse: %s", err, text)
	}
	if s.Selector == "" {
		return none, fmt.Errorf("%w for %s", ErrNoSuggestion, action)
	}
	if !listed(elements, s.Selector) {
		return none, fmt.Errorf("suggested selector %q is not on the page", s.Selector)
	}

	a.Logger.Info("advisor suggestion",
		zap.String("action", action),
		zap.String("selector", s.Selector),
		zap.String("reason", s.Reason))
	return locator.CSS(s.Selector), nil
}

func listed(elements []pagemap.Element, selector string) bool {
	for _, el := range elements {
		if el.Selector == selector {
			return true
		}
	}
	return false
}
