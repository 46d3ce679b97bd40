package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one row of the append-only event log.
type LogEntry struct {
	LogID     string  `json:"log_id"`
	Level     string  `json:"level"`
	Message   string  `json:"message"`
	Context   *string `json:"context,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type LogService struct {
	db *sql.DB
}

func NewLogService(db *sql.DB) *LogService {
	return &LogService{db: db}
}

// Append writes one entry and returns its id. context may be empty; it is
// stored as NULL in that case.
func (s *LogService) Append(ctx context.Context, level, message, logContext string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	var contextVal any
	if logContext != "" {
		contextVal = logContext
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO logs (log_id, level, message, context, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, level, message, contextVal, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns the newest entries first, capped at limit.
func (s *LogService) List(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT log_id, level, message, context, created_at
		FROM logs
		ORDER BY created_at DESC, log_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []LogEntry{}
	for rows.Next() {
		var item LogEntry
		if err := rows.Scan(&item.LogID, &item.Level, &item.Message, &item.Context, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *LogService) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM logs`)
	return err
}
