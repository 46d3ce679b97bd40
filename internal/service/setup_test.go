package service_test

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"amzhub/internal/secrets"
)

// setupDB creates an in-memory SQLite DB with the same schema the goose
// migrations produce.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// One connection: each sqlite :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE paapi_config (
    id                   INTEGER PRIMARY KEY CHECK (id = 1),
    access_key           TEXT NOT NULL DEFAULT '',
    secret_key_encrypted TEXT NOT NULL DEFAULT '',
    partner_tag          TEXT NOT NULL DEFAULT '',
    marketplace          TEXT NOT NULL DEFAULT '',
    region               TEXT NOT NULL DEFAULT '',
    host                 TEXT NOT NULL DEFAULT '',
    updated_at           TEXT NOT NULL
);
CREATE TABLE secrets (
    secret_id       TEXT PRIMARY KEY,
    name            TEXT NOT NULL UNIQUE,
    value_encrypted TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);
CREATE TABLE logs (
    log_id     TEXT PRIMARY KEY,
    level      TEXT NOT NULL,
    message    TEXT NOT NULL,
    context    TEXT,
    created_at TEXT NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func setupCipher(t *testing.T) *secrets.Cipher {
	t.Helper()
	key, err := secrets.DeriveKey(strings.Repeat("test-passphrase-", 2))
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	c, err := secrets.NewCipher(key)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	return c
}
