package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	l := newZerolog(&buf, false, "layout")
	l.Debugw("layout built", map[string]any{"lanes": 3, "day": "Mon"})
	l.Infof("feed %s", "v1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "layout", first["component"])
	assert.Equal(t, "debug", first["level"])
	assert.EqualValues(t, 3, first["lanes"])
	assert.Less(t, strings.Index(lines[0], `"day"`), strings.Index(lines[0], `"lanes"`))
	assert.Contains(t, lines[1], `"message":"feed v1"`)
}

func TestZerologLoggerLevelFilter(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	require.NoError(t, SetLevel("warn"))

	var buf bytes.Buffer
	l := newZerolog(&buf, false, "api")
	l.Debugw("hidden", map[string]any{"k": 1})
	l.Infof("hidden")
	l.Warnf("shown")
	l.Errorf("shown too")
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestConfigure(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer SetOutput(os.Stdout)
	defer func() { _ = Configure(Options{}) }()

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Configure(Options{Level: "info", Format: FormatConsole}))
	New("cli").Infof("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)

	assert.Error(t, Configure(Options{Level: "info", Format: "xml"}))
	assert.Error(t, Configure(Options{Level: "loud"}))
}

func TestConfigureFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer SetOutput(os.Stdout)

	path := filepath.Join(t.TempDir(), "logs", "shiftboard.log")
	require.NoError(t, Configure(Options{Level: "info", File: path, MaxSizeMB: 1}))
	New("serve").Infof("listening")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"component":"serve"`)
	assert.Contains(t, string(b), `"message":"listening"`)
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	assert.NoError(t, SetLevel("DEBUG"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.NoError(t, SetLevel(""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Error(t, SetLevel("loud"))
}
