package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Setting is the API-facing key/value shape.
type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type SettingService struct {
	db *sql.DB
}

func NewSettingService(db *sql.DB) *SettingService {
	return &SettingService{db: db}
}

func (s *SettingService) List(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM settings
		ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Setting{}
	for rows.Next() {
		var item Setting
		if err := rows.Scan(&item.Key, &item.Value, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SettingService) Get(ctx context.Context, key string) (*Setting, error) {
	var item Setting
	err := s.db.QueryRowContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM settings WHERE key = ?`, key).
		Scan(&item.Key, &item.Value, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *SettingService) Put(ctx context.Context, key, value string) (*Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("setting key is required")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now, now)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, key)
}

func (s *SettingService) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
