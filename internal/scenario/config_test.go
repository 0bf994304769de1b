package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "2025-01-31", cfg.Event.StartDate())
	// AddDate normalizes February 31st
	assert.Equal(t, "2025-03-03", cfg.Event.EndDate())
	assert.Equal(t, "esemény", cfg.Event.PartialName())
}

func TestPartialName(t *testing.T) {
	assert.Equal(t, "tavasz", Event{Liga: "tavasz_2025_u19"}.PartialName())
	assert.Equal(t, "", Event{Liga: "_x"}.PartialName())
}

func TestTagged(t *testing.T) {
	ev := Event{Liga: "esemény"}.Tagged("3f2a9c1b")
	assert.Equal(t, "esemény_3f2a9c1b", ev.Liga)
	assert.Equal(t, "esemény", ev.PartialName())
	assert.Equal(t, "esemény", Event{Liga: "esemény"}.Tagged("").Liga)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig(time.Now())
	cfg.AdminURL = "focistak/admin"
	cfg.Password = ""
	cfg.Event.End = cfg.Event.Start.Add(-time.Hour)
	cfg.LookupTimeout = 0

	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid admin URL")
	assert.ErrorContains(t, err, "credentials")
	assert.ErrorContains(t, err, "ends before it starts")
	assert.ErrorContains(t, err, "lookup timeout")
}

func TestValidateReportsURLsInOrder(t *testing.T) {
	cfg := DefaultConfig(time.Now())
	cfg.AdminURL = "admin"
	cfg.ListingURL = "listing"

	for i := 0; i < 10; i++ {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, "invalid admin URL \"admin\"\ninvalid listing URL \"listing\"", err.Error())
	}
}
