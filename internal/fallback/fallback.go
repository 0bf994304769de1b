// Package fallback runs ordered "try this, else that" chains. Every chain in
// the repository (write strategies, lookups, verification) is expressed as a
// list of attempts instead of nested error handling.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrExhausted is returned when no attempt of a chain succeeded
var ErrExhausted = errors.New("all attempts exhausted")

// Attempt is one step of a chain. Try reports ok=false to continue with the
// next attempt; a non-nil error is recorded and also continues the chain.
type Attempt[T any] struct {
	Name string
	Try  func(ctx context.Context) (T, bool, error)
}

// Run executes attempts in order and returns the first successful result and
// the name of the attempt that produced it. Context cancellation stops the
// chain immediately.
func Run[T any](ctx context.Context, log *zap.Logger, attempts ...Attempt[T]) (T, string, error) {
	var (
		zero T
		errs []error
	)
	if log == nil {
		log = zap.NewNop()
	}

	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		v, ok, err := a.Try(ctx)
		if ok {
			log.Debug("attempt succeeded", zap.String("attempt", a.Name))
			return v, a.Name, nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, "", ctxErr
			}
			log.Debug("attempt failed", zap.String("attempt", a.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
			continue
		}
		log.Debug("attempt did not match", zap.String("attempt", a.Name))
	}

	return zero, "", errors.Join(append([]error{ErrExhausted}, errs...)...)
}
