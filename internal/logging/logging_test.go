package logging

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestSubsystemAndErrorAttributes(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelDebug)

	Error("cache", errors.New("boom"), "fetch failed after %d tries", 1)

	out := buf.String()
	assert.Contains(t, out, "subsystem=cache")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "fetch failed after 1 tries")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelWarn)

	Info("nav", "hidden")
	Warn("nav", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitForTUIWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "playit-manager.log")
	closer, err := InitForTUI(LevelInfo, path)
	require.NoError(t, err)
	defer closer.Close()

	Info("test", "hello")
	assert.FileExists(t, path)
}
