package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	appLog "confprint/internal/log"
	"confprint/internal/model"
)

// BreakConfig describes a pause inserted into every room table on the days
// matched by Rule.
type BreakConfig struct {
	// ID is the synthetic event id. It is bumped if the feed already uses it.
	ID int `yaml:"id" json:"id"`
	// Title is shown in the timetable row, e.g. "Pause déjeuner".
	Title string `yaml:"title" json:"title"`
	// Start and Duration are "HH:MM".
	Start    string `yaml:"start" json:"start"`
	Duration string `yaml:"duration" json:"duration"`
	// Rule is an RFC 5545 RRULE selecting the dates the break applies to,
	// e.g. "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR,SA".
	Rule string `yaml:"rule" json:"rule"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the preview server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// FeedURL is the pentabarf XML schedule endpoint.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// Output is where the PDF is written. A previous file is replaced.
	Output string `yaml:"output" json:"output"`

	// Stylesheet is the CSS file applied to the timetable.
	Stylesheet string `yaml:"stylesheet" json:"stylesheet"`

	// ICSOutput, if set, also exports the program as an iCalendar file.
	ICSOutput string `yaml:"ics_output,omitempty" json:"ics_output,omitempty"`

	// Locale drives day and month names, e.g. "fr_FR" or "fr-FR".
	Locale string `yaml:"locale" json:"locale"`

	// Label is printed in every room header; empty hides it.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// ExcludedRooms are never rendered, whatever their content.
	ExcludedRooms []string `yaml:"excluded_rooms" json:"excluded_rooms"`

	// Breaks are synthesized into each rendered room table.
	Breaks []BreakConfig `yaml:"breaks" json:"breaks"`

	// FetchTimeoutSec bounds the feed download.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec" json:"fetch_timeout_sec"`

	// RenderTimeoutSec bounds the headless browser pagination.
	RenderTimeoutSec int `yaml:"render_timeout_sec" json:"render_timeout_sec"`

	// Refresh is an optional cron expression ("*/30 * * * *"). Empty means a
	// single run.
	Refresh string `yaml:"refresh,omitempty" json:"refresh,omitempty"`

	// Listen is the address of the preview server.
	Listen string `yaml:"listen" json:"listen"`

	// BasicAuth, if non-nil, protects the preview server except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

const (
	defaultFeedURL          = "https://cfp.capitoledulibre.org/cdl-2022/schedule/export/schedule.xml"
	defaultOutput           = "cdl2022.pdf"
	defaultStylesheet       = "style.css"
	defaultLocale           = "fr_FR"
	defaultListen           = "127.0.0.1:8080"
	defaultFetchTimeoutSec  = 15
	defaultRenderTimeoutSec = 60
	defaultLogLevel         = "info"
)

// DefaultExcludedRooms holds the overflow room that never gets a table.
var DefaultExcludedRooms = []string{"Salle d'attente"}

// DefaultBreaks returns the lunch break (every day) and the afternoon break
// (every day but Sunday, the closing day).
func DefaultBreaks() []BreakConfig {
	return []BreakConfig{
		{ID: 9000, Title: "Pause déjeuner", Start: "12:30", Duration: "01:30", Rule: "FREQ=DAILY"},
		{ID: 9001, Title: "Pause", Start: "16:00", Duration: "00:30", Rule: "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR,SA"},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		FeedURL:          defaultFeedURL,
		Output:           defaultOutput,
		Stylesheet:       defaultStylesheet,
		Locale:           defaultLocale,
		ExcludedRooms:    append([]string(nil), DefaultExcludedRooms...),
		Breaks:           DefaultBreaks(),
		FetchTimeoutSec:  defaultFetchTimeoutSec,
		RenderTimeoutSec: defaultRenderTimeoutSec,
		Listen:           defaultListen,
		LogLevel:         defaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.FeedURL == "" {
		c.FeedURL = defaultFeedURL
	}
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if c.Stylesheet == "" {
		c.Stylesheet = defaultStylesheet
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	// nil means "not set"; an explicit empty list disables the rule.
	if c.ExcludedRooms == nil {
		c.ExcludedRooms = append([]string(nil), DefaultExcludedRooms...)
	}
	if c.Breaks == nil {
		c.Breaks = DefaultBreaks()
	}
	for i := range c.Breaks {
		if c.Breaks[i].Rule == "" {
			c.Breaks[i].Rule = "FREQ=DAILY"
		}
	}
	if c.FetchTimeoutSec <= 0 {
		c.FetchTimeoutSec = defaultFetchTimeoutSec
	}
	if c.RenderTimeoutSec <= 0 {
		c.RenderTimeoutSec = defaultRenderTimeoutSec
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Validate checks the fields that would otherwise only fail mid-render.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[int]bool)
	for i, b := range c.Breaks {
		if _, err := model.ParseClock(b.Start); err != nil {
			errs = append(errs, fmt.Errorf("breaks[%d].start: %w", i, err))
		}
		if _, err := model.ParseClock(b.Duration); err != nil {
			errs = append(errs, fmt.Errorf("breaks[%d].duration: %w", i, err))
		}
		if _, err := rrule.StrToROption(b.Rule); err != nil {
			errs = append(errs, fmt.Errorf("breaks[%d].rule: %w", i, err))
		}
		if seen[b.ID] {
			errs = append(errs, fmt.Errorf("breaks[%d].id: duplicate id %d", i, b.ID))
		}
		seen[b.ID] = true
	}
	if c.Refresh != "" {
		if _, err := cron.ParseStandard(c.Refresh); err != nil {
			errs = append(errs, fmt.Errorf("refresh: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ApplyEnv overrides fields from CONFPRINT_* environment variables.
func (c *Config) ApplyEnv() {
	overrides := map[string]*string{
		"CONFPRINT_FEED_URL":   &c.FeedURL,
		"CONFPRINT_OUTPUT":     &c.Output,
		"CONFPRINT_STYLESHEET": &c.Stylesheet,
		"CONFPRINT_ICS_OUTPUT": &c.ICSOutput,
		"CONFPRINT_LOCALE":     &c.Locale,
		"CONFPRINT_LOG_LEVEL":  &c.LogLevel,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

// IsExcluded reports whether room must be left out of the timetable.
func (c *Config) IsExcluded(room string) bool {
	for _, r := range c.ExcludedRooms {
		if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(room)) {
			return true
		}
	}
	return false
}

// Load reads the YAML file at path and fills unset fields with defaults.
// On first run, when path does not exist, the default configuration is
// written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("failed to write default config: %w", err)
			}
			appLog.Info("default config written", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save normalizes cfg and writes it to path through a temp file and rename,
// so a crash never leaves a truncated config behind.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".confprint-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
