package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLevel(LevelInfo)

	SetLevel(LevelWarn)
	Info("hidden")
	Warn("unrecognized element", "tag", "sponsor")
	Error("fetch failed", errors.New("boom"), "url", "https://example.test")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] unrecognized element tag=sponsor")
	assert.Contains(t, out, "[ERROR] fetch failed err=boom url=https://example.test")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" ERROR "))
	assert.Equal(t, LevelInfo, ParseLevel("chatty"))
}

func TestFormatKVsQuotes(t *testing.T) {
	assert.Equal(t, ` room="Salle A" n=3`, formatKVs("room", "Salle A", "n", 3))
	assert.Equal(t, ` a=1`, formatKVs("a", 1, "dangling"))
}
