package field

import (
	"fmt"
	"strings"
	"time"
)

// Locale selects the keyboard formats tried for date fields
type Locale string

const (
	LocaleUS Locale = "us"
	LocaleEU Locale = "eu"
	LocaleHU Locale = "hu"
)

// ISODate is the canonical date layout of date inputs
const ISODate = "2006-01-02"

var localeLayouts = map[Locale][]string{
	LocaleUS: {"01/02/2006"},
	LocaleEU: {"02/01/2006", "01/02/2006"},
	LocaleHU: {"2006.01.02.", "01/02/2006"},
}

// ParseLocale validates a locale name; the empty string means LocaleUS
func ParseLocale(s string) (Locale, error) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	if l == "" {
		return LocaleUS, nil
	}
	if _, ok := localeLayouts[l]; !ok {
		return "", fmt.Errorf("unknown date locale %q (supported: us, eu, hu)", s)
	}
	return l, nil
}

// DateVariants returns the keyboard encodings of an ISO date value for the
// locale, or nil when value is not an ISO date
func DateVariants(value string, locale Locale) []string {
	t, err := time.Parse(ISODate, value)
	if err != nil {
		return nil
	}
	layouts, ok := localeLayouts[locale]
	if !ok {
		layouts = localeLayouts[LocaleUS]
	}

	variants := make([]string, 0, len(layouts))
	for _, layout := range layouts {
		variants = append(variants, t.Format(layout))
	}
	return variants
}
