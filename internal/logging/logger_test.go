package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, parseLevel("error", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud", slog.LevelInfo))
}

func TestNewLogger_DropsTimeOutsideDebug(t *testing.T) {
	t.Setenv("TREB_LOG_LEVEL", "")
	var buf bytes.Buffer
	log := newLogger(&buf, false)
	log.Info("committed", "nonce", 3)

	assert.NotContains(t, buf.String(), "time=")
	assert.Contains(t, buf.String(), "msg=committed")
	assert.Contains(t, buf.String(), "nonce=3")
}

func TestNewLogger_DebugEnablesDebugLevel(t *testing.T) {
	t.Setenv("TREB_LOG_LEVEL", "error")
	var buf bytes.Buffer
	log := newLogger(&buf, true)
	log.Debug("chunk sent")

	assert.Contains(t, buf.String(), "chunk sent")
}
