// Package scenario drives the admin workflow end to end: log in, open the
// events section, create an event through the form, and confirm it appears on
// the public listing.
package scenario

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/field"
	"github.com/v0xg/eventprobe/internal/resolve"
	"github.com/v0xg/eventprobe/internal/session"
)

// Observer is notified as the workflow progresses
type Observer interface {
	// Step is called after a step completes, successfully or not
	Step(ctx context.Context, name string)
	// Clicked is called with each element the workflow clicked
	Clicked(ctx context.Context, el session.Element)
}

// Report summarizes a completed run
type Report struct {
	Section    string // how the events section was reached
	SectionErr error  // non-nil when the section could not be opened
	Fields     []FieldResult
	Messages   Messages
	Verdict    Verdict
	Duration   time.Duration
}

// Scenario runs the workflow over one session. The session stays owned by
// the caller.
type Scenario struct {
	Session  session.Session
	Resolver *resolve.Resolver
	Writer   *field.Writer
	Config   Config
	Logger   *zap.Logger
	// Out receives the step narration; nil discards it
	Out      io.Writer
	Observer Observer
}

// New wires a scenario with a resolver and a writer over s
func New(s session.Session, cfg Config, log *zap.Logger) *Scenario {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scenario{
		Session:  s,
		Resolver: resolve.New(s, log.Named("resolve")),
		Writer:   field.New(s, log.Named("field")),
		Config:   cfg,
		Logger:   log,
		Out:      io.Discard,
	}
}

// Run executes every step in order. Login, opening the form and submitting it
// are mandatory; the other steps log their failures and continue.
func (s *Scenario) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	rep := &Report{}

	s.say("→ Logging in to %s... ", s.Config.AdminURL)
	if err := s.Login(ctx); err != nil {
		s.say("failed\n")
		return rep, fmt.Errorf("login: %w", err)
	}
	s.say("done\n")
	s.observe(ctx, "login")

	s.say("→ Opening events section... ")
	how, err := s.OpenSection(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		s.say("skipped\n")
		s.Logger.Warn("could not open events section, continuing on current page", zap.Error(err))
		rep.SectionErr = err
	} else {
		s.say("done (%s)\n", how)
		rep.Section = how
	}
	s.observe(ctx, "section")

	s.say("→ Opening create form... ")
	if err := s.OpenCreateForm(ctx); err != nil {
		s.say("failed\n")
		return rep, fmt.Errorf("open create form: %w", err)
	}
	s.say("done\n")
	s.observe(ctx, "form")

	s.say("→ Filling event form...\n")
	fields, err := s.FillForm(ctx)
	rep.Fields = fields
	if err != nil {
		return rep, fmt.Errorf("fill form: %w", err)
	}
	for _, f := range fields {
		s.say("  %s %s = %q (%s)\n", f.mark(), f.Name, f.Value, f.Strategy)
	}
	s.observe(ctx, "filled")

	s.say("→ Submitting... ")
	msgs, err := s.Submit(ctx)
	if err != nil {
		s.say("failed\n")
		return rep, fmt.Errorf("submit: %w", err)
	}
	rep.Messages = msgs
	s.say("done\n")
	for _, m := range msgs.Success {
		s.say("  ✓ %s\n", m)
	}
	for _, m := range msgs.Errors {
		s.say("  ⚠ %s\n", m)
	}
	s.observe(ctx, "submitted")

	s.say("→ Opening event listing... ")
	if err := s.GoToListing(ctx); err != nil {
		s.say("failed\n")
		return rep, fmt.Errorf("open listing: %w", err)
	}
	s.say("done\n")
	s.observe(ctx, "listing")

	s.say("→ Looking for %q... ", s.Config.Event.Liga)
	verdict, err := s.Verify(ctx)
	if err != nil {
		s.say("failed\n")
		return rep, fmt.Errorf("verify: %w", err)
	}
	rep.Verdict = verdict
	s.say("%s\n", verdict)
	s.observe(ctx, "verified")

	rep.Duration = time.Since(start)
	return rep, nil
}

func (s *Scenario) say(format string, args ...any) {
	if s.Out != nil {
		fmt.Fprintf(s.Out, format, args...)
	}
}

func (s *Scenario) observe(ctx context.Context, step string) {
	if s.Observer != nil {
		s.Observer.Step(ctx, step)
	}
}

func (s *Scenario) clicked(ctx context.Context, el session.Element) {
	if s.Observer != nil && el != nil {
		s.Observer.Clicked(ctx, el)
	}
}

// idle blocks for d. It is used only where the page exposes no condition to
// poll for.
func idle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
