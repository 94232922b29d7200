package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel(" TRACE "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerLevelsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{level: LogLevelInfo, out: log.New(&buf, "", 0)}
	synth := l.With("Synth")

	synth.Info("generated %d rows", 10)
	synth.Debug("hidden")

	assert.Equal(t, "[INFO] [Synth] generated 10 rows\n", buf.String())
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("nothing") })
	assert.NotPanics(t, func() { NewDiscardLogger().Error("dropped") })
}
