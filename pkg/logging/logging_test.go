package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skonuru8/browser/pkg/config"
)

func TestConsoleLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggerConfig{Level: "warn", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Named("tab").Warn("loud", zap.String("url", "http://a.test/"))

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "browser.tab")
	assert.Contains(t, out, "http://a.test/")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggerConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Info("loaded", zap.Int("commands", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(3), entry["commands"])
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser.log")
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, &buf)
	require.NoError(t, err)
	logger.Debug("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"to file"`), string(data))
	assert.Contains(t, buf.String(), "to file")
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "console"})
	assert.Error(t, err)
}
