package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateVariants(t *testing.T) {
	assert.Equal(t, []string{"06/15/2025"}, DateVariants("2025-06-15", LocaleUS))
	assert.Equal(t, []string{"15/06/2025", "06/15/2025"}, DateVariants("2025-06-15", LocaleEU))
	assert.Equal(t, []string{"2025.06.15.", "06/15/2025"}, DateVariants("2025-06-15", LocaleHU))
	assert.Equal(t, []string{"06/15/2025"}, DateVariants("2025-06-15", Locale("xx")))

	assert.Nil(t, DateVariants("esemény", LocaleUS))
	assert.Nil(t, DateVariants("2025-13-01", LocaleUS))
	assert.Nil(t, DateVariants("06/15/2025", LocaleUS))
}

func TestParseLocale(t *testing.T) {
	l, err := ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, LocaleUS, l)

	l, err = ParseLocale(" HU ")
	require.NoError(t, err)
	assert.Equal(t, LocaleHU, l)

	_, err = ParseLocale("fr")
	assert.ErrorContains(t, err, "unknown date locale")
}
