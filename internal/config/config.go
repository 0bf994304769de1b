// Package config loads eventprobe settings from defaults, an optional YAML
// file, EVENTPROBE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/v0xg/eventprobe/internal/field"
	"github.com/v0xg/eventprobe/internal/scenario"
	"github.com/v0xg/eventprobe/internal/session"
)

// EnvPrefix prefixes every environment override, e.g. EVENTPROBE_SITE_EMAIL
const EnvPrefix = "EVENTPROBE"

// Config represents the application configuration
type Config struct {
	Site     SiteConfig    `mapstructure:"site"`
	Event    EventConfig   `mapstructure:"event"`
	Browser  BrowserConfig `mapstructure:"browser"`
	Timeouts TimeoutConfig `mapstructure:"timeouts"`
	Advisor  AdvisorConfig `mapstructure:"advisor"`
	Output   OutputConfig  `mapstructure:"output"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

type SiteConfig struct {
	AdminURL   string `mapstructure:"admin_url"`
	ListingURL string `mapstructure:"listing_url"`
	Email      string `mapstructure:"email"`
	Password   string `mapstructure:"password"`
	Section    string `mapstructure:"section"`
	MenuIndex  int    `mapstructure:"menu_index"`
}

type EventConfig struct {
	Liga   string `mapstructure:"liga"`
	Round  string `mapstructure:"round"`
	Status string `mapstructure:"status"`
	// Start is an ISO date; empty means today
	Start  string `mapstructure:"start"`
	Months int    `mapstructure:"months"`
	Locale string `mapstructure:"date_locale"`
	// Unique appends the run ID to the liga name
	Unique bool `mapstructure:"unique"`
}

type BrowserConfig struct {
	Bin        string        `mapstructure:"bin"`
	Headless   bool          `mapstructure:"headless"`
	Width      int           `mapstructure:"width"`
	Height     int           `mapstructure:"height"`
	ProfileDir string        `mapstructure:"profile_dir"`
	SlowMotion time.Duration `mapstructure:"slow_motion"`
}

type TimeoutConfig struct {
	Run          time.Duration `mapstructure:"run"`
	Lookup       time.Duration `mapstructure:"lookup"`
	Field        time.Duration `mapstructure:"field"`
	Verify       time.Duration `mapstructure:"verify"`
	Interval     time.Duration `mapstructure:"interval"`
	Settle       time.Duration `mapstructure:"settle"`
	RedirectWait time.Duration `mapstructure:"redirect_wait"`
	RenderWait   time.Duration `mapstructure:"render_wait"`
}

type AdvisorConfig struct {
	// Provider enables the locator advisor: claude or openai
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

type OutputConfig struct {
	Record      string `mapstructure:"record"`
	FailureShot string `mapstructure:"failure_shot"`
	FrameDelay  int    `mapstructure:"frame_delay"`
	MaxWidth    uint   `mapstructure:"max_width"`
}

type LoggingConfig struct {
	Verbose bool   `mapstructure:"verbose"`
	Format  string `mapstructure:"format"`
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"admin-url":    "site.admin_url",
	"listing-url":  "site.listing_url",
	"email":        "site.email",
	"password":     "site.password",
	"liga":         "event.liga",
	"start":        "event.start",
	"date-locale":  "event.date_locale",
	"unique":       "event.unique",
	"headless":     "browser.headless",
	"width":        "browser.width",
	"height":       "browser.height",
	"profile":      "browser.profile_dir",
	"slow-motion":  "browser.slow_motion",
	"timeout":      "timeouts.lookup",
	"provider":     "advisor.provider",
	"model":        "advisor.model",
	"record":       "output.record",
	"failure-shot": "output.failure_shot",
	"verbose":      "logging.verbose",
	"log-format":   "logging.format",
}

func setDefaults(v *viper.Viper) {
	d := scenario.DefaultConfig(time.Time{})

	v.SetDefault("site.admin_url", d.AdminURL)
	v.SetDefault("site.listing_url", d.ListingURL)
	v.SetDefault("site.email", d.Email)
	v.SetDefault("site.password", d.Password)
	v.SetDefault("site.section", d.SectionText)
	v.SetDefault("site.menu_index", d.MenuIndex)

	v.SetDefault("event.liga", d.Event.Liga)
	v.SetDefault("event.round", d.Event.Round)
	v.SetDefault("event.status", d.Event.Status)
	v.SetDefault("event.start", "")
	v.SetDefault("event.months", 1)
	v.SetDefault("event.date_locale", string(field.LocaleUS))
	v.SetDefault("event.unique", false)

	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 900)
	v.SetDefault("browser.profile_dir", "")
	v.SetDefault("browser.slow_motion", time.Duration(0))

	v.SetDefault("timeouts.run", 5*time.Minute)
	v.SetDefault("timeouts.lookup", d.LookupTimeout)
	v.SetDefault("timeouts.field", d.FieldTimeout)
	v.SetDefault("timeouts.verify", d.VerifyTimeout)
	v.SetDefault("timeouts.interval", 250*time.Millisecond)
	v.SetDefault("timeouts.settle", field.DefaultSettle)
	v.SetDefault("timeouts.redirect_wait", d.RedirectWait)
	v.SetDefault("timeouts.render_wait", d.RenderWait)

	v.SetDefault("advisor.provider", "")
	v.SetDefault("advisor.model", "")
	v.SetDefault("advisor.api_key", "")

	v.SetDefault("output.record", "")
	v.SetDefault("output.failure_shot", "eventprobe-failure.png")
	v.SetDefault("output.frame_delay", 100)
	v.SetDefault("output.max_width", 800)

	v.SetDefault("logging.verbose", false)
	v.SetDefault("logging.format", "console")
}

// Load builds the configuration. configFile may be empty; flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that the scenario cannot check itself
func (c *Config) Validate() error {
	var errs []error
	if _, err := field.ParseLocale(c.Event.Locale); err != nil {
		errs = append(errs, err)
	}
	if c.Event.Start != "" {
		if _, err := time.Parse(field.ISODate, c.Event.Start); err != nil {
			errs = append(errs, fmt.Errorf("event start %q is not a YYYY-MM-DD date", c.Event.Start))
		}
	}
	if c.Event.Months < 0 {
		errs = append(errs, errors.New("event months must not be negative"))
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid viewport %dx%d", c.Browser.Width, c.Browser.Height))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (supported: console, json)", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Scenario returns the workflow configuration, dating the event from now
// unless a start date is configured
func (c *Config) Scenario(now time.Time) scenario.Config {
	start := now
	if c.Event.Start != "" {
		if t, err := time.ParseInLocation(field.ISODate, c.Event.Start, now.Location()); err == nil {
			start = t
		}
	}

	d := scenario.DefaultConfig(start)
	d.AdminURL = c.Site.AdminURL
	d.ListingURL = c.Site.ListingURL
	d.Email = c.Site.Email
	d.Password = c.Site.Password
	d.SectionText = c.Site.Section
	d.MenuIndex = c.Site.MenuIndex

	d.Event.Liga = c.Event.Liga
	d.Event.Round = c.Event.Round
	d.Event.Status = c.Event.Status
	d.Event.End = start.AddDate(0, c.Event.Months, 0)

	d.LookupTimeout = c.Timeouts.Lookup
	d.FieldTimeout = c.Timeouts.Field
	d.VerifyTimeout = c.Timeouts.Verify
	d.RedirectWait = c.Timeouts.RedirectWait
	d.RenderWait = c.Timeouts.RenderWait
	return d
}

// Session returns the browser launch options
func (c *Config) Session() session.Options {
	return session.Options{
		Bin:        c.Browser.Bin,
		Width:      c.Browser.Width,
		Height:     c.Browser.Height,
		Headless:   c.Browser.Headless,
		ProfileDir: c.Browser.ProfileDir,
		SlowMotion: c.Browser.SlowMotion,
	}
}

// DateLocale returns the validated date locale
func (c *Config) DateLocale() field.Locale {
	l, err := field.ParseLocale(c.Event.Locale)
	if err != nil {
		return field.LocaleUS
	}
	return l
}
