// Package journal keeps an append-only JSONL record of tunnel mutations and
// answers history queries over it with DuckDB.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/playit-manager/playit-manager/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// timeLayout is fixed width so that string order is time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type line struct {
	ID         string `json:"id"`
	RecordedAt string `json:"recorded_at"`
	TunnelID   string `json:"tunnel_id"`
	Field      string `json:"field"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
	Status     int    `json:"status"`
	Success    bool   `json:"success"`
}

// Writer appends mutation records to a JSONL file.
type Writer struct {
	mu   sync.Mutex
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Path() string {
	return w.path
}

// Record appends one record as a single line.
func (w *Writer) Record(rec models.MutationRecord) error {
	data, err := json.Marshal(line{
		ID:         rec.ID,
		RecordedAt: rec.RecordedAt.UTC().Format(timeLayout),
		TunnelID:   rec.TunnelID,
		Field:      rec.Field,
		OldValue:   rec.OldValue,
		NewValue:   rec.NewValue,
		Status:     rec.Status,
		Success:    rec.Success,
	})
	if err != nil {
		return fmt.Errorf("failed to encode journal record: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o700); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open journal %s: %w", w.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append to journal: %w", err)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
