package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confprint/internal/feed"
	"confprint/internal/timetable"
)

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath = filepath.Join(dir, "confprint.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output: from-file.pdf\nlog_level: warn\n"), 0o600))
	t.Setenv("CONFPRINT_OUTPUT", "from-env.pdf")

	require.NoError(t, loadConfig())
	assert.Equal(t, "from-env.pdf", cfg.Output)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "confprint.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("refresh: \"not a cron\"\n"), 0o600))

	err := loadConfig()
	require.Error(t, err)
	assert.Equal(t, "Invalid configuration", err.Error())
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
	}{
		{
			name:      "http status",
			err:       &feed.FetchError{URL: "https://example.test", Status: 404, Err: errors.New("not found")},
			wantTitle: "Schedule feed returned HTTP 404",
		},
		{
			name:      "transport",
			err:       &feed.FetchError{URL: "https://example.test", Err: errors.New("dial tcp: refused")},
			wantTitle: "Schedule feed unreachable",
		},
		{
			name:      "parse",
			err:       &feed.ParseError{Element: "event", Attr: "id", Err: errors.New("missing")},
			wantTitle: "Schedule feed is malformed",
		},
		{
			name:      "paginate",
			err:       &timetable.RenderError{Stage: "paginate", Err: errors.New("chrome not found")},
			wantTitle: "PDF generation failed",
		},
		{
			name:      "other",
			err:       errors.New("boom"),
			wantTitle: "confprint failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, _ := describeError(tt.err)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}

func TestSummaryRows(t *testing.T) {
	labels := timetable.Labels{Time: "Heure", Talk: "Conférence"}
	room := timetable.RoomTable{
		Room: "Amphi A002",
		Rows: []timetable.Row{
			{Time: "09h30 à 10h15", Title: "Ouverture", Persons: "Alice et Bob"},
			{Separator: true},
			{Time: "12h30 à 14h00", Title: "Pause déjeuner", Break: true},
		},
	}

	header, rows := summaryRows(labels, room)
	assert.Equal(t, []string{"Heure", "Conférence", ""}, header)
	assert.Equal(t, [][]string{
		{"09h30 à 10h15", "Ouverture", "Alice et Bob"},
		{"", "", ""},
		{"12h30 à 14h00", "Pause déjeuner", ""},
	}, rows)
}
