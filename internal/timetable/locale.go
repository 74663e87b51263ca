package timetable

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"

	appLog "confprint/internal/log"
)

// fallbackLocale is used when the configured locale is unknown.
const fallbackLocale monday.Locale = monday.LocaleEnUS

// Labels are the fixed strings of a room table.
type Labels struct {
	Room     string
	Time     string
	Talk     string
	Until    string
	And      string
	Language string
}

var frenchLabels = Labels{
	Room:     "Salle",
	Time:     "Heure",
	Talk:     "Conférence",
	Until:    "à",
	And:      "et",
	Language: "fr",
}

var englishLabels = Labels{
	Room:     "Room",
	Time:     "Time",
	Talk:     "Talk",
	Until:    "to",
	And:      "and",
	Language: "en",
}

// Formatter renders dates, times and speaker lists for one locale.
type Formatter struct {
	locale monday.Locale
	labels Labels
}

// NewFormatter accepts POSIX ("fr_FR") or BCP 47 ("fr-FR", "fr") tags.
// Unsupported locales fall back to English names with a warning, so a
// missing locale never aborts a render.
func NewFormatter(tag string) *Formatter {
	loc, err := resolveLocale(tag)
	if err != nil {
		appLog.Warn("locale unavailable; falling back", "locale", tag, "fallback", fallbackLocale, "reason", err)
		return &Formatter{locale: fallbackLocale, labels: englishLabels}
	}

	labels := englishLabels
	if strings.HasPrefix(string(loc), "fr_") {
		labels = frenchLabels
	}
	return &Formatter{locale: loc, labels: labels}
}

func resolveLocale(tag string) (monday.Locale, error) {
	t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return "", err
	}
	base, _ := t.Base()
	region, _ := t.Region()
	loc := monday.Locale(base.String() + "_" + region.String())
	if !slices.Contains(monday.ListLocales(), loc) {
		return "", fmt.Errorf("no calendar names for %s", loc)
	}
	return loc, nil
}

// Locale returns the resolved locale.
func (f *Formatter) Locale() monday.Locale {
	return f.locale
}

// Labels returns the table strings for the locale.
func (f *Formatter) Labels() Labels {
	return f.labels
}

// DayTitle formats a day heading, e.g. "samedi 19 novembre".
func (f *Formatter) DayTitle(t time.Time) string {
	return monday.Format(t, "Monday 02 January", f.locale)
}

// Clock formats a time of day, "09h30" in French and "09:30" otherwise.
func (f *Formatter) Clock(t time.Time) string {
	if f.labels.Language == "fr" {
		return t.Format("15h04")
	}
	return t.Format("15:04")
}

// TimeRange formats "09h30 à 10h45".
func (f *Formatter) TimeRange(start, end time.Time) string {
	return f.Clock(start) + " " + f.labels.Until + " " + f.Clock(end)
}
