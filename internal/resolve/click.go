package resolve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/fallback"
	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/session"
)

// Position selects which element of the generic fallback query is clicked
type Position int

const (
	First Position = iota
	Last
)

func (p Position) String() string {
	if p == Last {
		return "last"
	}
	return "first"
}

// PositionFor picks the fallback position by the control's role: submit and
// save controls sit at the end of a form, open and create controls first.
func PositionFor(role string) Position {
	role = strings.ToLower(role)
	if strings.Contains(role, "submit") || strings.Contains(role, "save") {
		return Last
	}
	return First
}

// Advisor suggests a locator for a named action when the candidates fail
type Advisor interface {
	Suggest(ctx context.Context, action string) (locator.Locator, error)
}

// Action is a clickable target with its fallback chain
type Action struct {
	Name       string
	Candidates locator.Candidates
	// Fallback is a broad query such as locator.Tag("button"); the zero
	// Locator disables it
	Fallback locator.Locator
	Position Position
}

// Match describes which locator produced the clicked element
type Match struct {
	Locator locator.Locator
	Source  string // candidate, advisor or fallback
}

type pick struct {
	el    session.Element
	match Match
}

// ClickFirstMatch clicks the first element found by the action's candidates,
// then the advisor's suggestion, then the generic fallback. The lookup is a
// single pass without visibility filtering and the click is dispatched by
// script, so overlays and off-screen controls do not block it.
func (r *Resolver) ClickFirstMatch(ctx context.Context, a Action) (session.Element, Match, error) {
	log := r.log().With(zap.String("action", a.Name))

	var attempts []fallback.Attempt[pick]
	for _, loc := range a.Candidates {
		attempts = append(attempts, r.findAttempt(loc, "candidate", First))
	}
	if r.Advisor != nil {
		attempts = append(attempts, fallback.Attempt[pick]{
			Name: "advisor",
			Try: func(ctx context.Context) (pick, bool, error) {
				loc, err := r.Advisor.Suggest(ctx, a.Name)
				if err != nil {
					return pick{}, false, err
				}
				return r.findAttempt(loc, "advisor", First).Try(ctx)
			},
		})
	}
	if !a.Fallback.IsZero() {
		attempts = append(attempts, r.findAttempt(a.Fallback, "fallback", a.Position))
	}

	p, _, err := fallback.Run(ctx, log, attempts...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Match{}, err
		}
		return nil, Match{}, fmt.Errorf("%w: could not find any %s: %w", ErrActionUnavailable, a.Name, err)
	}

	if p.match.Source == "fallback" {
		log.Info(fmt.Sprintf("trying %s %s as %s", a.Position, a.Fallback.Value(), a.Name))
	} else {
		log.Info("found "+a.Name, zap.Stringer("locator", p.match.Locator), zap.String("source", p.match.Source))
	}

	if _, err := r.Session.ExecuteScript(ctx, session.ScriptClick, p.el); err != nil {
		return nil, p.match, fmt.Errorf("click %s: %w", a.Name, err)
	}
	return p.el, p.match, nil
}

func (r *Resolver) findAttempt(loc locator.Locator, source string, pos Position) fallback.Attempt[pick] {
	return fallback.Attempt[pick]{
		Name: source + " " + loc.String(),
		Try: func(ctx context.Context) (pick, bool, error) {
			els, err := r.Session.FindElements(ctx, loc)
			if err != nil || len(els) == 0 {
				return pick{}, false, err
			}
			el := els[0]
			if pos == Last {
				el = els[len(els)-1]
			}
			return pick{el: el, match: Match{Locator: loc, Source: source}}, true, nil
		},
	}
}
