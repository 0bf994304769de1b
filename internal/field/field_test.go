package field

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/session"
	"github.com/v0xg/eventprobe/internal/session/sessiontest"
)

func newWriter(t *testing.T, s *sessiontest.Session) *Writer {
	w := New(s, zaptest.NewLogger(t))
	w.Settle = time.Millisecond
	return w
}

func find(t *testing.T, s *sessiontest.Session, id string) session.Element {
	t.Helper()
	els, err := s.FindElements(context.Background(), locator.ID(id))
	require.NoError(t, err)
	require.Len(t, els, 1)
	return els[0]
}

func TestSetValueByScriptDispatchesEvents(t *testing.T) {
	liga := sessiontest.Input("liga")
	s := sessiontest.New("https://example.test/form", liga)

	ok := newWriter(t, s).SetValue(context.Background(), find(t, s, "liga"), "esemény")
	assert.True(t, ok)
	assert.Equal(t, "esemény", liga.Value)
	assert.Equal(t, []string{"change", "input"}, liga.Events)
}

func TestSetValueIsIdempotent(t *testing.T) {
	start := sessiontest.DateInput("starting_date")
	s := sessiontest.New("https://example.test/form", start)
	w := newWriter(t, s)
	el := find(t, s, "starting_date")

	assert.True(t, w.SetValue(context.Background(), el, "2025-06-15"))
	assert.Equal(t, "2025-06-15", start.Value)
	assert.True(t, w.SetValue(context.Background(), el, "2025-06-15"))
	assert.Equal(t, "2025-06-15", start.Value)
}

func TestSetValueSlashOnlyDateField(t *testing.T) {
	end := sessiontest.SlashDateInput("ending_date")
	s := sessiontest.New("https://example.test/form", end)

	ok := newWriter(t, s).SetValue(context.Background(), find(t, s, "ending_date"), "2025-06-15")
	require.True(t, ok)
	assert.Contains(t, end.Value, "2025")
	assert.Contains(t, end.Events, "blur", "keystroke strategies tab out of the field")
}

func TestSetValueFallsBackToKeystrokes(t *testing.T) {
	round := sessiontest.Input("round")
	round.IgnoreScript = true
	s := sessiontest.New("https://example.test/form", round)

	ok := newWriter(t, s).SetValue(context.Background(), find(t, s, "round"), "1")
	assert.True(t, ok)
	assert.Equal(t, "1", round.Value)
	assert.Equal(t, []string{"change", "input", "input", "change", "blur"}, round.Events)
}

func TestSetValueReportsUnconfirmed(t *testing.T) {
	stubborn := &sessiontest.Node{
		ID: "starting_date", Tag: "input", Type: "date",
		IgnoreScript: true,
		Accept:       func(string) (string, bool) { return "", false },
	}
	s := sessiontest.New("https://example.test/form", stubborn)

	ok := newWriter(t, s).SetValue(context.Background(), find(t, s, "starting_date"), "2025-06-15")
	assert.False(t, ok)

	blurs := 0
	for _, e := range stubborn.Events {
		if e == "blur" {
			blurs++
		}
	}
	assert.Equal(t, 2, blurs, "ISO keystrokes and the slash variant are both tried")
}

func TestSetValueStaleElement(t *testing.T) {
	liga := sessiontest.Input("liga")
	s := sessiontest.New("https://example.test/form", liga)
	el := find(t, s, "liga")
	s.Remove(liga)

	assert.False(t, newWriter(t, s).SetValue(context.Background(), el, "esemény"))
}

func TestApplyUsesCallerVariants(t *testing.T) {
	picker := &sessiontest.Node{
		ID: "when", Tag: "input", IgnoreScript: true,
		Accept: func(typed string) (string, bool) { return typed, typed == "15 June 2025" },
	}
	s := sessiontest.New("https://example.test/form", picker)

	ok := newWriter(t, s).Apply(context.Background(), Assignment{
		Element:  find(t, s, "when"),
		Target:   "2025-06-15",
		Variants: []string{"06/15/2025", "15 June 2025"},
	})
	assert.True(t, ok)
	assert.Equal(t, "15 June 2025", picker.Value)
}

func TestApplyHonorsCancellation(t *testing.T) {
	liga := sessiontest.Input("liga")
	s := sessiontest.New("https://example.test/form", liga)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, newWriter(t, s).SetValue(ctx, find(t, s, "liga"), "esemény"))
}

// Confirmed is pinned to the one-directional check: the current value must
// equal the target or contain the target's leading token.
func TestConfirmedPinnedComparison(t *testing.T) {
	tests := []struct {
		current, target string
		want            bool
	}{
		{"2025-06-15", "2025-06-15", true},
		{"06/15/2025", "2025-06-15", true},
		{"2025.06.15.", "2025-06-15", true},
		{"2025", "2025-06-15", true},
		{"2025-06-15", "2025", true},
		{"", "2025-06-15", false},
		{"15/06/2024", "2025-06-15", false},
		{"2025", "2025-06", true},
		{"1", "1", true},
		{"11", "1", true},
		{"", "1", false},
		{"esemény 2", "esemény", true},
		{"esem", "esemény", false},
		{"x", "", false},
		{"", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Confirmed(tt.current, tt.target), "Confirmed(%q, %q)", tt.current, tt.target)
	}
}
