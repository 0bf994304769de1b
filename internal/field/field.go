// Package field forces values into form fields whose frameworks ignore plain
// property writes.
package field

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/fallback"
	"github.com/v0xg/eventprobe/internal/session"
)

// DefaultSettle is the pause between a write and its read-back
const DefaultSettle = 300 * time.Millisecond

// Assignment is one value to impose on one element. Variants are alternate
// encodings of Target typed when the canonical form is not accepted.
type Assignment struct {
	Element  session.Element
	Target   string
	Variants []string
}

// Writer applies assignments. The zero Settle uses DefaultSettle.
type Writer struct {
	Session session.Session
	Settle  time.Duration
	Logger  *zap.Logger
	Locale  Locale
}

// New returns a writer over s with default settle and US date variants
func New(s session.Session, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{Session: s, Settle: DefaultSettle, Logger: log, Locale: LocaleUS}
}

// SetValue imposes value on el and reports whether the read-back confirmed
// it. ISO dates additionally get the writer locale's keyboard formats.
func (w *Writer) SetValue(ctx context.Context, el session.Element, value string) bool {
	return w.Apply(ctx, Assignment{
		Element:  el,
		Target:   value,
		Variants: DateVariants(value, w.Locale),
	})
}

// Apply runs the write strategies in order until one is confirmed:
// script assignment with change/input events, then keystrokes of the target,
// then keystrokes of each variant. Failure is logged, not returned.
func (w *Writer) Apply(ctx context.Context, a Assignment) bool {
	log := w.log().With(zap.String("target", a.Target))
	log.Info("setting field")

	attempts := []fallback.Attempt[string]{
		{Name: "script", Try: func(ctx context.Context) (string, bool, error) {
			if _, err := w.Session.ExecuteScript(ctx, session.ScriptScrollIntoView, a.Element); err != nil {
				log.Debug("scroll into view failed", zap.Error(err))
			}
			if _, err := w.Session.ExecuteScript(ctx, session.ScriptAssignValue, a.Element, a.Target); err != nil {
				return "", false, err
			}
			return w.readBack(ctx, a)
		}},
		{Name: "keys", Try: w.typeValue(a, a.Target)},
	}
	for _, v := range a.Variants {
		attempts = append(attempts, fallback.Attempt[string]{Name: "keys " + v, Try: w.typeValue(a, v)})
	}

	current, strategy, err := fallback.Run(ctx, log, attempts...)
	if err != nil {
		log.Warn("all approaches to set the field failed", zap.Error(err))
		return false
	}
	log.Debug("field set", zap.String("strategy", strategy), zap.String("value", current))
	return true
}

func (w *Writer) typeValue(a Assignment, text string) func(ctx context.Context) (string, bool, error) {
	return func(ctx context.Context) (string, bool, error) {
		if err := a.Element.Clear(ctx); err != nil {
			return "", false, err
		}
		if err := a.Element.SendKeys(ctx, text); err != nil {
			return "", false, err
		}
		if err := a.Element.SendKeys(ctx, session.KeyTab); err != nil {
			return "", false, err
		}
		return w.readBack(ctx, a)
	}
}

func (w *Writer) readBack(ctx context.Context, a Assignment) (string, bool, error) {
	settle := w.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	t := time.NewTimer(settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-t.C:
	}

	current, err := a.Element.Value(ctx)
	if err != nil {
		return "", false, err
	}
	return current, Confirmed(current, a.Target), nil
}

func (w *Writer) log() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

// Confirmed reports whether a field showing current holds target: either
// exactly, or current contains target's leading "-" separated token (the
// year of an ISO date), so widgets that reformat dates still confirm. The
// containment is one-directional. An empty leading token never confirms.
func Confirmed(current, target string) bool {
	if current == target {
		return true
	}
	token, _, _ := strings.Cut(target, "-")
	return token != "" && strings.Contains(current, token)
}
