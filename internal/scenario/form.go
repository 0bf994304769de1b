package scenario

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/v0xg/eventprobe/internal/fallback"
	"github.com/v0xg/eventprobe/internal/locator"
)

// FieldSpec names a form field and where to look for it. When Locator finds
// nothing the Index-th match of Generic is used instead. Date fields also
// fall back when the value written through Locator is not confirmed.
type FieldSpec struct {
	Name    string
	Locator locator.Locator
	Generic locator.Locator
	Index   int
	Value   string
	Date    bool
}

// FieldResult is the outcome of filling one field
type FieldResult struct {
	Name      string
	Value     string
	Found     bool
	Confirmed bool
	// Strategy is the lookup that produced the confirmed element
	Strategy string
}

func (f FieldResult) mark() string {
	switch {
	case f.Confirmed:
		return "✓"
	case f.Found:
		return "⚠"
	default:
		return "✗"
	}
}

// Fields returns the event form layout
func (s *Scenario) Fields() []FieldSpec {
	ev := s.Config.Event
	input := locator.Tag("input")
	date := locator.CSS("input[type='date']")

	return []FieldSpec{
		{Name: "liga", Locator: locator.ID("liga"), Generic: input, Index: 0, Value: ev.Liga},
		{Name: "round", Locator: locator.ID("round"), Generic: input, Index: 1, Value: ev.Round},
		{Name: "starting_date", Locator: locator.ID("starting_date"), Generic: date, Index: 0, Value: ev.StartDate(), Date: true},
		{Name: "ending_date", Locator: locator.ID("ending_date"), Generic: date, Index: 1, Value: ev.EndDate(), Date: true},
		{Name: "status", Locator: locator.ID("esemenyStatus"), Generic: locator.Tag("select"), Index: 0, Value: ev.Status},
	}
}

// FillForm writes every field of the form. Missing or unconfirmed fields are
// reported in the results; only cancellation is an error.
func (s *Scenario) FillForm(ctx context.Context) ([]FieldResult, error) {
	specs := s.Fields()
	results := make([]FieldResult, 0, len(specs))
	for _, spec := range specs {
		res, err := s.fill(ctx, spec)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Scenario) fill(ctx context.Context, spec FieldSpec) (FieldResult, error) {
	log := s.Logger.With(zap.String("field", spec.Name))
	res := FieldResult{Name: spec.Name, Value: spec.Value}

	_, how, err := fallback.Run(ctx, log,
		fallback.Attempt[struct{}]{Name: spec.Locator.String(), Try: func(ctx context.Context) (struct{}, bool, error) {
			el, err := s.Resolver.WaitVisible(ctx, spec.Locator, s.Config.FieldTimeout)
			if err != nil {
				return struct{}{}, false, err
			}
			res.Found = true
			return struct{}{}, s.Writer.SetValue(ctx, el, spec.Value), nil
		}},
		fallback.Attempt[struct{}]{Name: fmt.Sprintf("%s[%d]", spec.Generic.Value(), spec.Index), Try: func(ctx context.Context) (struct{}, bool, error) {
			if res.Found && !spec.Date {
				return struct{}{}, false, nil
			}
			els, err := s.Session.FindElements(ctx, spec.Generic)
			if err != nil || len(els) <= spec.Index {
				return struct{}{}, false, err
			}
			res.Found = true
			return struct{}{}, s.Writer.SetValue(ctx, els[spec.Index], spec.Value), nil
		}},
	)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if res.Found {
			log.Warn("field value not confirmed", zap.String("value", spec.Value))
		} else {
			log.Warn("field not found", zap.Error(err))
		}
		return res, nil
	}

	res.Confirmed = true
	res.Strategy = how
	return res, nil
}
