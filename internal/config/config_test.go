package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/eventprobe/internal/field"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://focistak.netlify.app/admin", cfg.Site.AdminURL)
	assert.Equal(t, "https://focistak.netlify.app/competetion", cfg.Site.ListingURL)
	assert.Equal(t, "admin@example.hu", cfg.Site.Email)
	assert.Equal(t, "esemény", cfg.Event.Liga)
	assert.Equal(t, 1, cfg.Event.Months)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Lookup)
	assert.Equal(t, field.DefaultSettle, cfg.Timeouts.Settle)
	assert.Equal(t, uint(800), cfg.Output.MaxWidth)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Advisor.Provider)
	assert.False(t, cfg.Event.Unique)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  admin_url: https://staging.example.test/admin
  email: file@example.test
event:
  liga: tavasz_kupa
  date_locale: hu
timeouts:
  lookup: 3s
`), 0o644))

	t.Setenv("EVENTPROBE_SITE_EMAIL", "env@example.test")
	t.Setenv("EVENTPROBE_SITE_PASSWORD", "from-env")
	t.Setenv("EVENTPROBE_TIMEOUTS_RENDER_WAIT", "750ms")

	fs := pflag.NewFlagSet("eventprobe", pflag.ContinueOnError)
	fs.String("password", "", "")
	fs.Bool("headless", false, "")
	fs.Duration("timeout", 0, "")
	fs.Bool("unique", false, "")
	require.NoError(t, fs.Parse([]string{"--password=from-flag", "--headless", "--unique"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.test/admin", cfg.Site.AdminURL)
	assert.Equal(t, "env@example.test", cfg.Site.Email, "env overrides file")
	assert.Equal(t, "from-flag", cfg.Site.Password, "flag overrides env")
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Event.Unique)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Lookup, "unset flag keeps file value")
	assert.Equal(t, 750*time.Millisecond, cfg.Timeouts.RenderWait)
	assert.Equal(t, field.LocaleHU, cfg.DateLocale())
	assert.Equal(t, "tavasz_kupa", cfg.Event.Liga)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("EVENTPROBE_EVENT_DATE_LOCALE", "jp")
	t.Setenv("EVENTPROBE_EVENT_START", "15/06/2025")
	t.Setenv("EVENTPROBE_LOGGING_FORMAT", "xml")

	_, err := Load("", nil)
	assert.ErrorContains(t, err, `unknown date locale "jp"`)
	assert.ErrorContains(t, err, "not a YYYY-MM-DD date")
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestScenario(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Event.Start = "2025-03-01"
	cfg.Event.Months = 2
	cfg.Timeouts.Field = time.Second

	sc := cfg.Scenario(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, sc.Validate())
	assert.Equal(t, "2025-03-01", sc.Event.StartDate())
	assert.Equal(t, "2025-05-01", sc.Event.EndDate())
	assert.Equal(t, cfg.Site.AdminURL, sc.AdminURL)
	assert.Equal(t, "események", sc.SectionText)
	assert.Equal(t, time.Second, sc.FieldTimeout)

	cfg.Event.Start = ""
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	sc = cfg.Scenario(now)
	assert.Equal(t, "2025-06-15", sc.Event.StartDate())
	assert.Equal(t, "2025-08-15", sc.Event.EndDate())
}

func TestSession(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Browser.ProfileDir = "/tmp/profile"

	opts := cfg.Session()
	assert.Equal(t, 1280, opts.Width)
	assert.Equal(t, 900, opts.Height)
	assert.Equal(t, "/tmp/profile", opts.ProfileDir)
}
