package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "playit-manager")
	s := NewStore(dir)

	want := Credentials{Email: "me@example.com", Password: "hunter2"}
	require.NoError(t, s.Save(want))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissing(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadToleratesComments(t *testing.T) {
	dir := t.TempDir()
	content := `{
	// written by hand
	"email": "me@example.com",
	"password": "hunter2",
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(content), 0o600))

	got, err := NewStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", got.Email)
}

func TestLoadIncomplete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(`{"email": "x"}`), 0o600))

	_, err := NewStore(dir).Load()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Delete())

	require.NoError(t, s.Save(Credentials{Email: "a", Password: "b"}))
	require.NoError(t, s.Delete())
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}
