package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/playit-manager/playit-manager/internal/db"
	"github.com/playit-manager/playit-manager/pkg/models"
)

const journalColumns = `columns = {
		id: 'VARCHAR',
		recorded_at: 'VARCHAR',
		tunnel_id: 'VARCHAR',
		field: 'VARCHAR',
		old_value: 'VARCHAR',
		new_value: 'VARCHAR',
		status: 'INTEGER',
		success: 'BOOLEAN'
	}`

// Recent returns up to limit records, newest first. tunnelID filters when
// non-empty. A journal that does not exist yet yields no records.
func Recent(ctx context.Context, path, tunnelID string, limit int) ([]models.MutationRecord, error) {
	if !exists(path) {
		return nil, nil
	}
	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, recorded_at, tunnel_id, field, old_value, new_value, status, success
		FROM read_json('%s',
			format = 'newline_delimited',
			%s
		)
		WHERE ? = '' OR tunnel_id = ?
		ORDER BY recorded_at DESC
		LIMIT ?
	`, escapeLiteral(path), journalColumns)

	rows, err := database.QueryContext(ctx, query, tunnelID, tunnelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute history query: %w", err)
	}
	defer rows.Close()

	var records []models.MutationRecord
	for rows.Next() {
		var rec models.MutationRecord
		var recordedAt string
		var oldValue, newValue sql.NullString
		if err := rows.Scan(&rec.ID, &recordedAt, &rec.TunnelID, &rec.Field, &oldValue, &newValue, &rec.Status, &rec.Success); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.RecordedAt = parseTime(recordedAt)
		rec.OldValue = oldValue.String
		rec.NewValue = newValue.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Activity aggregates attempts per tunnel, most recently changed first.
func Activity(ctx context.Context, path string) ([]models.TunnelActivity, error) {
	if !exists(path) {
		return nil, nil
	}
	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH entries AS (
			SELECT tunnel_id, recorded_at, success
			FROM read_json('%s',
				format = 'newline_delimited',
				%s
			)
		)
		SELECT
			tunnel_id,
			COUNT(*) AS attempts,
			CAST(SUM(CASE WHEN success THEN 1 ELSE 0 END) AS INTEGER) AS succeeded,
			MAX(recorded_at) AS last_change
		FROM entries
		GROUP BY tunnel_id
		ORDER BY last_change DESC
	`, escapeLiteral(path), journalColumns)

	rows, err := database.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute activity query: %w", err)
	}
	defer rows.Close()

	var activity []models.TunnelActivity
	for rows.Next() {
		var a models.TunnelActivity
		var lastChange string
		if err := rows.Scan(&a.TunnelID, &a.Attempts, &a.Succeeded, &lastChange); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		a.LastChange = parseTime(lastChange)
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
