package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlog_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(InfoLevel, false, WithOutput(&buf), WithConsole(false))

	l.Debug("hidden")
	l.Info("frame sent", "id", 0x80, "len", 11)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "frame sent", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.InDelta(t, 0x80, rec["id"], 0)
	assert.Contains(t, rec, "ts")
}

func TestSlog_SetLevelSharedWithChild(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(ErrorLevel, false, WithOutput(&buf), WithConsole(false))
	child := l.With("component", "mcp2003a")

	child.Warn("dropped")
	assert.Zero(t, buf.Len())

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, child.Level())

	child.Debug("visible")
	assert.Contains(t, buf.String(), `"component":"mcp2003a"`)
	assert.Contains(t, buf.String(), `"msg":"visible"`)
}

func TestSlog_Console(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(InfoLevel, false, WithOutput(&buf), WithConsole(true))

	l.Info("wakeup sent")
	assert.Contains(t, buf.String(), "wakeup sent")
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
	} {
		got, ok := ParseLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	got, ok := ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, InfoLevel, got)
}

func TestNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.With("k", "v").Info("y")
		l.SetLevel(DebugLevel)
	})
	assert.Equal(t, FatalLevel, l.Level())
}
