package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunStopsAtFirstSuccess(t *testing.T) {
	var calls []string
	attempt := func(name string, ok bool) Attempt[string] {
		return Attempt[string]{Name: name, Try: func(ctx context.Context) (string, bool, error) {
			calls = append(calls, name)
			return name + "-result", ok, nil
		}}
	}

	v, name, err := Run(context.Background(), zap.NewNop(),
		attempt("first", false),
		attempt("second", true),
		attempt("third", true),
	)
	require.NoError(t, err)
	assert.Equal(t, "second-result", v)
	assert.Equal(t, "second", name)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestRunErrorsContinueAndAreReported(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := Run(context.Background(), nil,
		Attempt[int]{Name: "broken", Try: func(ctx context.Context) (int, bool, error) { return 0, false, boom }},
		Attempt[int]{Name: "empty", Try: func(ctx context.Context) (int, bool, error) { return 0, false, nil }},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken: boom")
}

func TestRunNoAttempts(t *testing.T) {
	_, _, err := Run[struct{}](context.Background(), nil)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, _, err := Run(ctx, nil,
		Attempt[int]{Name: "cancels", Try: func(ctx context.Context) (int, bool, error) {
			cancel()
			return 0, false, ctx.Err()
		}},
		Attempt[int]{Name: "never", Try: func(ctx context.Context) (int, bool, error) {
			t.Fatal("chain continued after cancellation")
			return 0, true, nil
		}},
	)
	assert.ErrorIs(t, err, context.Canceled)
}
