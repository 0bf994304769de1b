package scenario

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/v0xg/eventprobe/internal/field"
)

// Config parameterizes one run of the event workflow
type Config struct {
	AdminURL   string
	ListingURL string
	Email      string
	Password   string

	// SectionText is the menu label of the events section
	SectionText string
	// MenuIndex is the position of the events item among .menu-button
	// elements when SectionText finds nothing
	MenuIndex int

	Event Event

	// LookupTimeout bounds each mandatory element lookup
	LookupTimeout time.Duration
	// FieldTimeout bounds the lookup of a form field by its own locator
	// before the generic input fallback is used
	FieldTimeout time.Duration
	// VerifyTimeout bounds the wait for the record on the listing page
	VerifyTimeout time.Duration
	// RedirectWait is an idle wait after login: the client-side redirect has
	// no observable completion signal
	RedirectWait time.Duration
	// RenderWait is an idle wait after clicks whose effect cannot be polled
	// (section switch, submission round-trip)
	RenderWait time.Duration
}

// Event is the record created through the admin form
type Event struct {
	Liga   string
	Round  string
	Start  time.Time
	End    time.Time
	Status string
}

// StartDate returns the start date in the form date inputs expect
func (e Event) StartDate() string { return e.Start.Format(field.ISODate) }

// EndDate returns the end date in the form date inputs expect
func (e Event) EndDate() string { return e.End.Format(field.ISODate) }

// Tagged returns the event with tag appended to its liga name, so repeated
// runs create distinguishable records that still share a partial name
func (e Event) Tagged(tag string) Event {
	if tag != "" {
		e.Liga += "_" + tag
	}
	return e
}

// PartialName is the liga name up to its first underscore, used when the
// listing shortens names
func (e Event) PartialName() string {
	for i, r := range e.Liga {
		if r == '_' {
			return e.Liga[:i]
		}
	}
	return e.Liga
}

// DefaultConfig returns the workflow against the football admin demo site,
// with an event running from now for one month
func DefaultConfig(now time.Time) Config {
	return Config{
		AdminURL:    "https://focistak.netlify.app/admin",
		ListingURL:  "https://focistak.netlify.app/competetion",
		Email:       "admin@example.hu",
		Password:    "Admin123$",
		SectionText: "események",
		MenuIndex:   2,
		Event: Event{
			Liga:   "esemény",
			Round:  "1",
			Start:  now,
			End:    now.AddDate(0, 1, 0),
			Status: "1",
		},
		LookupTimeout: 10 * time.Second,
		FieldTimeout:  3 * time.Second,
		VerifyTimeout: 5 * time.Second,
		RedirectWait:  2 * time.Second,
		RenderWait:    1500 * time.Millisecond,
	}
}

// Validate reports configuration errors that would make a run meaningless
func (c Config) Validate() error {
	var errs []error
	for _, u := range []struct{ name, raw string }{
		{"admin URL", c.AdminURL},
		{"listing URL", c.ListingURL},
	} {
		parsed, err := url.Parse(u.raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("invalid %s %q", u.name, u.raw))
		}
	}
	if c.Email == "" || c.Password == "" {
		errs = append(errs, errors.New("admin credentials are required"))
	}
	if c.Event.Liga == "" {
		errs = append(errs, errors.New("event liga name is required"))
	}
	if c.Event.End.Before(c.Event.Start) {
		errs = append(errs, errors.New("event ends before it starts"))
	}
	if c.LookupTimeout <= 0 {
		errs = append(errs, errors.New("lookup timeout must be positive"))
	}
	return errors.Join(errs...)
}
