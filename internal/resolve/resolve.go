// Package resolve locates elements through ranked candidate locators, polling
// until the page has rendered them.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/pagemap"
	"github.com/v0xg/eventprobe/internal/session"
)

// DefaultInterval is the polling interval used when Resolver.Interval is zero
const DefaultInterval = 250 * time.Millisecond

var (
	// ErrNotFound means no candidate produced a visible element in time
	ErrNotFound = errors.New("element not found")
	// ErrActionUnavailable means neither the candidates nor the generic
	// fallback produced a control to click
	ErrActionUnavailable = errors.New("action unavailable")
)

// NotFoundError describes a Resolve call that timed out
type NotFoundError struct {
	Candidates locator.Candidates
	Timeout    time.Duration
	// Hidden is the locator that matched only invisible elements on the last
	// poll, if any
	Hidden locator.Locator
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("element not found: %s within %s", e.Candidates, e.Timeout)
	if !e.Hidden.IsZero() {
		msg += fmt.Sprintf(" (%s matched hidden elements only)", e.Hidden)
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Snapshotter is implemented by sessions that can describe the current page
type Snapshotter interface {
	Snapshot(ctx context.Context) (*pagemap.PageMap, error)
}

// Resolver finds elements in a session. It is not safe for concurrent use,
// matching the single-owner session it wraps.
type Resolver struct {
	Session  session.Session
	Interval time.Duration
	Logger   *zap.Logger
	// Advisor, when set, is consulted by ClickFirstMatch after the candidate
	// list and before the generic fallback
	Advisor Advisor
}

// New returns a resolver over s with the default polling interval
func New(s session.Session, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{Session: s, Interval: DefaultInterval, Logger: log}
}

// Resolve polls until a candidate yields a visible element or timeout
// elapses. Each poll walks candidates in order; the first locator with any
// match decides the poll: its first visible match is returned, and if all of
// its matches are hidden the poll fails without consulting later locators.
// Stale handles and missing elements are retried, not reported.
func (r *Resolver) Resolve(ctx context.Context, candidates locator.Candidates, timeout time.Duration) (session.Element, error) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := time.Now().Add(timeout)

	for {
		el, loc, hidden, err := r.poll(ctx, candidates)
		if err != nil {
			return nil, err
		}
		if el != nil {
			r.log().Debug("resolved element", zap.Stringer("locator", loc))
			return el, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			nf := &NotFoundError{Candidates: candidates, Timeout: timeout, Hidden: hidden}
			r.logPage(ctx, nf)
			return nil, nf
		}
		if err := sleep(ctx, min(interval, remaining)); err != nil {
			return nil, err
		}
	}
}

// WaitVisible waits for a single locator to match a visible element
func (r *Resolver) WaitVisible(ctx context.Context, loc locator.Locator, timeout time.Duration) (session.Element, error) {
	return r.Resolve(ctx, locator.Of(loc), timeout)
}

// poll performs one pass over candidates against the current document
func (r *Resolver) poll(ctx context.Context, candidates locator.Candidates) (session.Element, locator.Locator, locator.Locator, error) {
	var none locator.Locator

	for _, loc := range candidates {
		els, err := r.Session.FindElements(ctx, loc)
		if err != nil {
			if session.IsTransient(err) {
				continue
			}
			return nil, none, none, fmt.Errorf("find %s: %w", loc, err)
		}

		hidden := false
		for _, el := range els {
			visible, err := el.IsDisplayed(ctx)
			if err != nil {
				if session.IsTransient(err) {
					continue
				}
				return nil, none, none, fmt.Errorf("visibility of %s: %w", loc, err)
			}
			if visible {
				return el, loc, none, nil
			}
			hidden = true
		}
		if hidden {
			return nil, none, loc, nil
		}
	}
	return nil, none, none, nil
}

func (r *Resolver) logPage(ctx context.Context, nf *NotFoundError) {
	log := r.log()
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	snap, ok := r.Session.(Snapshotter)
	if !ok {
		return
	}
	m, err := snap.Snapshot(ctx)
	if err != nil {
		log.Debug("page snapshot failed", zap.Error(err))
		return
	}
	log.Debug("element not found", zap.Stringer("candidates", nf.Candidates), zap.String("page", m.Summary(20)))
}

func (r *Resolver) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
