package scenario

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/resolve"
	"github.com/v0xg/eventprobe/internal/session"
)

// Verdict is the outcome of looking for the created event on the listing
type Verdict int

const (
	Missing Verdict = iota
	Found
	FoundAfterRefresh
	Partial
)

func (v Verdict) String() string {
	switch v {
	case Found:
		return "found"
	case FoundAfterRefresh:
		return "found after refresh"
	case Partial:
		return "partial match"
	default:
		return "not found"
	}
}

// OK reports whether the event was seen in any form
func (v Verdict) OK() bool { return v != Missing }

// Border colors applied to matches
const (
	HighlightExact   = "red"
	HighlightPartial = "orange"
)

// Verify looks for the event name on the current page, then once more after
// a reload, then for its partial name. Names are matched case-sensitively so
// a "Események" heading does not count as the event "esemény". Matches are
// outlined.
func (s *Scenario) Verify(ctx context.Context) (Verdict, error) {
	name := s.Config.Event.Liga

	found, err := s.lookFor(ctx, name)
	if err != nil {
		return Missing, err
	}
	if found {
		return Found, nil
	}

	s.Logger.Info("event not visible yet, reloading listing", zap.String("name", name))
	if err := s.Session.Reload(ctx); err != nil {
		return Missing, fmt.Errorf("reload listing: %w", err)
	}
	found, err = s.lookFor(ctx, name)
	if err != nil {
		return Missing, err
	}
	if found {
		return FoundAfterRefresh, nil
	}

	partial := s.Config.Event.PartialName()
	els, err := s.Session.FindElements(ctx, locator.ExactText(partial))
	if err != nil && !session.IsTransient(err) {
		return Missing, fmt.Errorf("find %q: %w", partial, err)
	}
	if len(els) > 0 {
		s.Logger.Info("partial match on listing", zap.String("partial", partial), zap.Int("matches", len(els)))
		s.highlight(ctx, els[0], HighlightPartial)
		return Partial, nil
	}

	s.Logger.Warn("event not found on listing", zap.String("name", name))
	return Missing, nil
}

func (s *Scenario) lookFor(ctx context.Context, name string) (bool, error) {
	el, err := s.Resolver.WaitVisible(ctx, locator.ExactText(name), s.Config.VerifyTimeout)
	if err != nil {
		if errors.Is(err, resolve.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	s.Logger.Info("event found on listing", zap.String("name", name))
	s.highlight(ctx, el, HighlightExact)
	return true, nil
}

func (s *Scenario) highlight(ctx context.Context, el session.Element, color string) {
	if _, err := s.Session.ExecuteScript(ctx, session.ScriptHighlight, el, color); err != nil {
		s.Logger.Debug("highlight failed", zap.Error(err))
	}
}
