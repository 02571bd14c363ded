package journal

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playit-manager/playit-manager/internal/db"
	"github.com/playit-manager/playit-manager/pkg/models"
)

func writeRecords(t *testing.T, w *Writer) {
	t.Helper()
	base := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	recs := []models.MutationRecord{
		{ID: "1", RecordedAt: base, TunnelID: "t-1", Field: "name", OldValue: "a", NewValue: "b", Status: 200, Success: true},
		{ID: "2", RecordedAt: base.Add(time.Minute), TunnelID: "t-2", Field: "local_port", OldValue: "80", NewValue: "8080", Status: 400},
		{ID: "3", RecordedAt: base.Add(2 * time.Minute), TunnelID: "t-1", Field: "local_port", OldValue: "1", NewValue: "2", Status: 200, Success: true},
	}
	for _, r := range recs {
		require.NoError(t, w.Record(r))
	}
}

func TestWriterAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	w := NewWriter(path)
	writeRecords(t, w)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var l line
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &l))
		lines = append(lines, l)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "2026-10-17T12:00:00.000000Z", lines[0].RecordedAt)
	assert.Equal(t, "8080", lines[1].NewValue)
	assert.False(t, lines[1].Success)
}

func TestQueriesOnMissingJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.jsonl")

	recs, err := Recent(context.Background(), path, "", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)

	act, err := Activity(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, act)
}

func TestRecentAndActivity(t *testing.T) {
	if _, err := db.GetDB(); err != nil {
		t.Skipf("Skipping test, DuckDB unavailable: %v", err)
	}

	path := filepath.Join(t.TempDir(), "history.jsonl")
	writeRecords(t, NewWriter(path))

	recs, err := Recent(context.Background(), path, "", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "3", recs[0].ID)
	assert.Equal(t, "2", recs[1].ID)
	assert.Equal(t, time.Date(2026, 10, 17, 12, 2, 0, 0, time.UTC), recs[0].RecordedAt)

	filtered, err := Recent(context.Background(), path, "t-2", 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 400, filtered[0].Status)

	act, err := Activity(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, act, 2)
	assert.Equal(t, "t-1", act[0].TunnelID)
	assert.Equal(t, 2, act[0].Attempts)
	assert.Equal(t, 2, act[0].Succeeded)
	assert.Equal(t, 0, act[1].Succeeded)
}
