package service_test

import (
	"context"
	"strings"
	"testing"

	"amzhub/internal/paapi"
	"amzhub/internal/service"
)

func TestSecretStoredEncrypted(t *testing.T) {
	db := setupDB(t)
	svc := service.NewSecretService(db, setupCipher(t))
	ctx := context.Background()

	if _, err := svc.Put(ctx, "api-token", "tok_1234567890"); err != nil {
		t.Fatalf("put: %v", err)
	}

	var stored string
	if err := db.QueryRow(`SELECT value_encrypted FROM secrets WHERE name = 'api-token'`).Scan(&stored); err != nil {
		t.Fatalf("read row: %v", err)
	}
	if strings.Contains(stored, "tok_1234567890") {
		t.Fatalf("plaintext leaked into the store: %q", stored)
	}
	if got := len(strings.Split(stored, ":")); got != 3 {
		t.Fatalf("stored envelope has %d segments, want 3", got)
	}
}

func TestSecretRevealRoundTrip(t *testing.T) {
	db := setupDB(t)
	svc := service.NewSecretService(db, setupCipher(t))
	ctx := context.Background()

	if _, err := svc.Put(ctx, "api-token", "tok_1234567890"); err != nil {
		t.Fatalf("put: %v", err)
	}
	item, err := svc.Get(ctx, "api-token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item == nil || item.Value == nil || *item.Value != "tok_1234567890" {
		t.Fatalf("reveal returned %+v", item)
	}
}

func TestSecretDecryptFailureDegradesToAbsentValue(t *testing.T) {
	db := setupDB(t)
	svc := service.NewSecretService(db, setupCipher(t))
	ctx := context.Background()

	if _, err := svc.Put(ctx, "api-token", "tok_1234567890"); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Corrupt the stored envelope out from under the service.
	if _, err := db.Exec(`UPDATE secrets SET value_encrypted = 'not:a:envelope' WHERE name = 'api-token'`); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	item, err := svc.Get(ctx, "api-token")
	if err != nil {
		t.Fatalf("decrypt failure must not surface as an error, got %v", err)
	}
	if item == nil {
		t.Fatalf("row should still be returned")
	}
	if item.Value != nil {
		t.Fatalf("corrupted envelope revealed a value: %q", *item.Value)
	}
}

func TestSecretListMasksValues(t *testing.T) {
	db := setupDB(t)
	svc := service.NewSecretService(db, setupCipher(t))
	ctx := context.Background()

	if _, err := svc.Put(ctx, "api-token", "tok_1234567890"); err != nil {
		t.Fatalf("put: %v", err)
	}
	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d secrets, want 1", len(items))
	}
	if items[0].ValueMasked == "" || strings.Contains(items[0].ValueMasked, "1234567") {
		t.Fatalf("list exposes too much of the value: %q", items[0].ValueMasked)
	}
}

func TestSecretGetMissingReturnsNil(t *testing.T) {
	db := setupDB(t)
	svc := service.NewSecretService(db, setupCipher(t))

	item, err := svc.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing secret, got %+v", item)
	}
}

func TestCredentialPutResolveRoundTrip(t *testing.T) {
	db := setupDB(t)
	svc := service.NewCredentialService(db, setupCipher(t))
	ctx := context.Background()

	_, err := svc.Put(ctx, paapi.Credentials{
		AccessKey:  "AKIDEXAMPLE",
		SecretKey:  "supersecretsigningkey",
		PartnerTag: "mytag-20",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	// Secret key never hits the store in plaintext.
	var stored string
	if err := db.QueryRow(`SELECT secret_key_encrypted FROM paapi_config WHERE id = 1`).Scan(&stored); err != nil {
		t.Fatalf("read row: %v", err)
	}
	if strings.Contains(stored, "supersecretsigningkey") {
		t.Fatalf("plaintext secret key leaked into the store")
	}

	creds, err := svc.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if creds == nil {
		t.Fatalf("resolve returned nil for stored credentials")
	}
	if creds.SecretKey != "supersecretsigningkey" {
		t.Fatalf("secret key did not round trip: %q", creds.SecretKey)
	}
	// Blank endpoint fields come back defaulted.
	if creds.Marketplace != paapi.DefaultMarketplace || creds.Region != paapi.DefaultRegion || creds.Host != paapi.DefaultHost {
		t.Fatalf("defaults not applied: %+v", creds)
	}
}

func TestCredentialGetMasksSecretKey(t *testing.T) {
	db := setupDB(t)
	svc := service.NewCredentialService(db, setupCipher(t))
	ctx := context.Background()

	if _, err := svc.Put(ctx, paapi.Credentials{AccessKey: "ak", SecretKey: "supersecretsigningkey", PartnerTag: "t-20"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	view, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.SecretKeyMasked == "" || strings.Contains(view.SecretKeyMasked, "secretsigning") {
		t.Fatalf("view exposes too much of the secret key: %q", view.SecretKeyMasked)
	}
}

func TestCredentialDelete(t *testing.T) {
	db := setupDB(t)
	svc := service.NewCredentialService(db, setupCipher(t))
	ctx := context.Background()

	if _, err := svc.Put(ctx, paapi.Credentials{AccessKey: "ak", SecretKey: "supersecretsigningkey"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := svc.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	view, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if view != nil {
		t.Fatalf("credentials still present after delete: %+v", view)
	}
}
