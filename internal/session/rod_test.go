package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/input"
	"github.com/stretchr/testify/assert"
)

func TestKeystrokes(t *testing.T) {
	keys, ok := keystrokes("06/15/2025\t")
	assert.True(t, ok)
	assert.Len(t, keys, 11)
	assert.Equal(t, input.Key('0'), keys[0])
	assert.Equal(t, input.Key('/'), keys[2])
	assert.Equal(t, input.Tab, keys[10])

	_, ok = keystrokes("esemény")
	assert.False(t, ok, "non-ASCII text is inserted, not typed")
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	err := classify(&rod.ElementNotFoundError{})
	assert.ErrorIs(t, err, ErrNoSuchElement)
	assert.True(t, IsTransient(err))

	err = classify(fmt.Errorf("eval: %w", &cdp.Error{Code: -32000, Message: "No node with given id found"}))
	assert.ErrorIs(t, err, ErrStale)
	assert.True(t, IsTransient(err))

	for _, stale := range []*cdp.Error{cdp.ErrObjNotFound, cdp.ErrCtxDestroyed, cdp.ErrCtxNotFound, cdp.ErrNodeNotFoundAtPos} {
		err = classify(fmt.Errorf("resolve: %w", stale))
		assert.ErrorIs(t, err, ErrStale, stale.Message)
		assert.True(t, IsTransient(err), stale.Message)
	}

	err = classify(&cdp.Error{Code: -32000, Message: "Execution context was destroyed.", Data: "frame navigated"})
	assert.True(t, IsTransient(err), "extra data does not hide a destroyed context")

	other := errors.New("connection reset")
	assert.Same(t, other, classify(other))
	assert.False(t, IsTransient(other))
}
