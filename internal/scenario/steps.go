package scenario

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/fallback"
	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/resolve"
	"github.com/v0xg/eventprobe/internal/session"
)

var (
	addCandidates = locator.Of(
		locator.Class("action-button"),
		locator.XPath("//button[contains(text(), 'Add')]"),
		locator.XPath("//button[contains(text(), 'New')]"),
		locator.XPath("//button[contains(text(), 'Create')]"),
		locator.XPath("//button[contains(@class, 'add')]"),
	)

	submitCandidates = locator.Of(
		locator.CSS(".form-button.submit"),
		locator.CSS("button[type='submit']"),
		locator.XPath("//button[contains(text(), 'Submit')]"),
		locator.XPath("//button[contains(text(), 'Save')]"),
		locator.XPath("//button[contains(text(), 'Create')]"),
	)

	successQuery = locator.XPath("//*[contains(text(), 'success') or contains(text(), 'Success') or contains(text(), 'created')]")
	errorQuery   = locator.XPath("//*[contains(text(), 'fail') or contains(text(), 'error') or contains(text(), 'hiba')]")
	viewQuery    = locator.XPath("//*[contains(text(), 'View') and contains(text(), 'Event')]")
)

// Login opens the admin page and submits the credentials
func (s *Scenario) Login(ctx context.Context) error {
	if err := s.Session.Navigate(ctx, s.Config.AdminURL); err != nil {
		return err
	}

	email, err := s.Resolver.WaitVisible(ctx, locator.ID("email"), s.Config.LookupTimeout)
	if err != nil {
		return err
	}
	if err := email.SendKeys(ctx, s.Config.Email); err != nil {
		return fmt.Errorf("type email: %w", err)
	}

	password, err := s.Resolver.WaitVisible(ctx, locator.ID("password"), s.Config.LookupTimeout)
	if err != nil {
		return err
	}
	if err := password.SendKeys(ctx, s.Config.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}

	button, err := s.Resolver.WaitVisible(ctx, locator.CSS("button[type='submit']"), s.Config.LookupTimeout)
	if err != nil {
		return err
	}
	if err := button.Click(ctx); err != nil {
		return fmt.Errorf("click login: %w", err)
	}
	s.clicked(ctx, button)
	s.Logger.Info("login submitted", zap.String("email", s.Config.Email))

	return idle(ctx, s.Config.RedirectWait)
}

// OpenSection switches to the events section and returns which probe
// succeeded: the section label, the menu position, or the page already
// showing the section.
func (s *Scenario) OpenSection(ctx context.Context) (string, error) {
	label := s.Config.SectionText

	clickFirst := func(loc locator.Locator, index int) func(ctx context.Context) (bool, bool, error) {
		return func(ctx context.Context) (bool, bool, error) {
			els, err := s.Session.FindElements(ctx, loc)
			if err != nil || len(els) <= index {
				return false, false, err
			}
			if _, err := s.Session.ExecuteScript(ctx, session.ScriptClick, els[index]); err != nil {
				return false, false, err
			}
			s.clicked(ctx, els[index])
			return true, true, nil
		}
	}

	clicked, how, err := fallback.Run(ctx, s.Logger,
		fallback.Attempt[bool]{Name: "section label", Try: clickFirst(locator.Text(label), 0)},
		fallback.Attempt[bool]{Name: "menu position", Try: clickFirst(locator.Class("menu-button"), s.Config.MenuIndex)},
		fallback.Attempt[bool]{Name: "already open", Try: func(ctx context.Context) (bool, bool, error) {
			src, err := s.Session.PageSource(ctx)
			if err != nil {
				return false, false, err
			}
			return false, strings.Contains(strings.ToLower(src), strings.ToLower(label)), nil
		}},
	)
	if err != nil {
		return "", fmt.Errorf("could not find %s section: %w", label, err)
	}
	s.Logger.Info("events section open", zap.String("via", how))

	if clicked {
		if err := idle(ctx, s.Config.RenderWait); err != nil {
			return "", err
		}
	}
	return how, nil
}

// OpenCreateForm clicks the control that opens the new event form
func (s *Scenario) OpenCreateForm(ctx context.Context) error {
	el, _, err := s.Resolver.ClickFirstMatch(ctx, resolve.Action{
		Name:       "add button",
		Candidates: addCandidates,
		Fallback:   locator.Tag("button"),
		Position:   resolve.PositionFor("add button"),
	})
	if err != nil {
		return err
	}
	s.clicked(ctx, el)
	return nil
}

// Messages are the notices shown after submitting the form
type Messages struct {
	Success []string
	Errors  []string
}

// Submit clicks the form's submit control, waits for the round trip and
// collects visible success and error notices
func (s *Scenario) Submit(ctx context.Context) (Messages, error) {
	el, _, err := s.Resolver.ClickFirstMatch(ctx, resolve.Action{
		Name:       "submit button",
		Candidates: submitCandidates,
		Fallback:   locator.Tag("button"),
		Position:   resolve.PositionFor("submit button"),
	})
	if err != nil {
		return Messages{}, err
	}
	s.clicked(ctx, el)

	if err := idle(ctx, s.Config.RenderWait); err != nil {
		return Messages{}, err
	}

	msgs := Messages{
		Success: s.visibleTexts(ctx, successQuery),
		Errors:  s.visibleTexts(ctx, errorQuery),
	}
	for _, m := range msgs.Success {
		s.Logger.Info("success message", zap.String("text", m))
	}
	for _, m := range msgs.Errors {
		s.Logger.Warn("error message", zap.String("text", m))
	}
	return msgs, nil
}

// GoToListing opens the public event listing, through the page's own
// control when there is one, otherwise by URL
func (s *Scenario) GoToListing(ctx context.Context) error {
	_, how, err := fallback.Run(ctx, s.Logger,
		fallback.Attempt[struct{}]{Name: "view events control", Try: func(ctx context.Context) (struct{}, bool, error) {
			els, err := s.Session.FindElements(ctx, viewQuery)
			if err != nil || len(els) == 0 {
				return struct{}{}, false, err
			}
			if _, err := s.Session.ExecuteScript(ctx, session.ScriptClick, els[0]); err != nil {
				return struct{}{}, false, err
			}
			s.clicked(ctx, els[0])
			return struct{}{}, true, nil
		}},
		fallback.Attempt[struct{}]{Name: "navigate", Try: func(ctx context.Context) (struct{}, bool, error) {
			if err := s.Session.Navigate(ctx, s.Config.ListingURL); err != nil {
				return struct{}{}, false, err
			}
			return struct{}{}, true, nil
		}},
	)
	if err != nil {
		return err
	}
	s.Logger.Info("listing open", zap.String("via", how))
	return nil
}

func (s *Scenario) visibleTexts(ctx context.Context, loc locator.Locator) []string {
	els, err := s.Session.FindElements(ctx, loc)
	if err != nil {
		s.Logger.Debug("message lookup failed", zap.Stringer("locator", loc), zap.Error(err))
		return nil
	}

	var texts []string
	for _, el := range els {
		if ok, err := el.IsDisplayed(ctx); err != nil || !ok {
			continue
		}
		text, err := el.Text(ctx)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}
