package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"amzhub/internal/secrets"
)

// SecretSummary is the list-view shape: the value is masked, never decrypted
// in full for listings.
type SecretSummary struct {
	SecretID    string `json:"secret_id"`
	Name        string `json:"name"`
	ValueMasked string `json:"value_masked"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// SecretValue is the reveal shape. Value is nil when the envelope could not
// be decrypted (wrong key, tampered row); the caller shows an absent value
// rather than an error.
type SecretValue struct {
	Name      string  `json:"name"`
	Value     *string `json:"value"`
	UpdatedAt string  `json:"updated_at"`
}

type SecretService struct {
	db     *sql.DB
	cipher *secrets.Cipher
}

func NewSecretService(db *sql.DB, cipher *secrets.Cipher) *SecretService {
	return &SecretService{db: db, cipher: cipher}
}

func (s *SecretService) List(ctx context.Context) ([]SecretSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT secret_id, name, value_encrypted, created_at, updated_at
		FROM secrets
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []SecretSummary{}
	for rows.Next() {
		var item SecretSummary
		var envelope string
		if err := rows.Scan(&item.SecretID, &item.Name, &envelope, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if plain, err := s.cipher.Decrypt(envelope); err == nil {
			item.ValueMasked = secrets.Mask(plain)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Put upserts a named secret, encrypting the value before it touches the
// store.
func (s *SecretService) Put(ctx context.Context, name, value string) (*SecretSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("secret name is required")
	}
	envelope, err := s.cipher.Encrypt(value)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO secrets (secret_id, name, value_encrypted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET value_encrypted = excluded.value_encrypted, updated_at = excluded.updated_at`,
		uuid.NewString(), name, envelope, now, now)
	if err != nil {
		return nil, err
	}

	var item SecretSummary
	err = s.db.QueryRowContext(ctx, `
		SELECT secret_id, name, created_at, updated_at FROM secrets WHERE name = ?`, name).
		Scan(&item.SecretID, &item.Name, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.ValueMasked = secrets.Mask(value)
	return &item, nil
}

// Get decrypts and returns a secret value. A missing row returns nil; a
// decrypt failure returns the row with a nil value.
func (s *SecretService) Get(ctx context.Context, name string) (*SecretValue, error) {
	var envelope string
	var item SecretValue
	err := s.db.QueryRowContext(ctx, `
		SELECT name, value_encrypted, updated_at FROM secrets WHERE name = ?`, name).
		Scan(&item.Name, &envelope, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	plain, err := s.cipher.Decrypt(envelope)
	if err != nil {
		var decryptErr *secrets.DecryptError
		if errors.As(err, &decryptErr) {
			return &item, nil
		}
		return nil, err
	}
	item.Value = &plain
	return &item, nil
}

func (s *SecretService) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE name = ?`, name)
	return err
}
