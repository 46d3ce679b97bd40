package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"amzhub/internal/paapi"
	"amzhub/internal/secrets"
)

// CredentialView is the API-facing shape of the stored credential set. The
// secret key is masked; the UI never gets it back in full.
type CredentialView struct {
	AccessKey       string `json:"access_key"`
	SecretKeyMasked string `json:"secret_key_masked"`
	PartnerTag      string `json:"partner_tag"`
	Marketplace     string `json:"marketplace"`
	Region          string `json:"region"`
	Host            string `json:"host"`
	UpdatedAt       string `json:"updated_at"`
}

// CredentialService owns the single-row paapi_config table. The secret key is
// encrypted at rest with the process cipher.
type CredentialService struct {
	db     *sql.DB
	cipher *secrets.Cipher
}

func NewCredentialService(db *sql.DB, cipher *secrets.Cipher) *CredentialService {
	return &CredentialService{db: db, cipher: cipher}
}

// Put replaces the credential set wholesale. There is no partial-field
// mutation; callers send the complete set every time.
func (s *CredentialService) Put(ctx context.Context, creds paapi.Credentials) (*CredentialView, error) {
	encrypted := ""
	if creds.SecretKey != "" {
		var err error
		encrypted, err = s.cipher.Encrypt(creds.SecretKey)
		if err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO paapi_config (id, access_key, secret_key_encrypted, partner_tag, marketplace, region, host, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			access_key = excluded.access_key,
			secret_key_encrypted = excluded.secret_key_encrypted,
			partner_tag = excluded.partner_tag,
			marketplace = excluded.marketplace,
			region = excluded.region,
			host = excluded.host,
			updated_at = excluded.updated_at`,
		strings.TrimSpace(creds.AccessKey), encrypted, strings.TrimSpace(creds.PartnerTag),
		strings.TrimSpace(creds.Marketplace), strings.TrimSpace(creds.Region),
		strings.TrimSpace(creds.Host), now)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

// Get returns the stored set for display, or nil when none is stored.
func (s *CredentialService) Get(ctx context.Context) (*CredentialView, error) {
	row, err := s.load(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	view := &CredentialView{
		AccessKey:   row.accessKey,
		PartnerTag:  row.partnerTag,
		Marketplace: row.marketplace,
		Region:      row.region,
		Host:        row.host,
		UpdatedAt:   row.updatedAt,
	}
	if row.secretKeyEncrypted != "" {
		// A failed decrypt degrades to an absent value, not an error.
		if plain, err := s.cipher.Decrypt(row.secretKeyEncrypted); err == nil {
			view.SecretKeyMasked = secrets.Mask(plain)
		}
	}
	return view, nil
}

// Resolve returns the fully-usable credential set with the secret key
// decrypted and endpoint defaults applied, or nil when none is stored.
func (s *CredentialService) Resolve(ctx context.Context) (*paapi.Credentials, error) {
	row, err := s.load(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	creds := paapi.Credentials{
		AccessKey:   row.accessKey,
		PartnerTag:  row.partnerTag,
		Marketplace: row.marketplace,
		Region:      row.region,
		Host:        row.host,
	}
	if row.secretKeyEncrypted != "" {
		plain, err := s.cipher.Decrypt(row.secretKeyEncrypted)
		if err != nil {
			var decryptErr *secrets.DecryptError
			if errors.As(err, &decryptErr) {
				// Value unavailable; the client's config gate reports it.
				plain = ""
			} else {
				return nil, err
			}
		}
		creds.SecretKey = plain
	}
	creds = creds.WithDefaults()
	return &creds, nil
}

func (s *CredentialService) Delete(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM paapi_config WHERE id = 1`)
	return err
}

type credentialRow struct {
	accessKey          string
	secretKeyEncrypted string
	partnerTag         string
	marketplace        string
	region             string
	host               string
	updatedAt          string
}

func (s *CredentialService) load(ctx context.Context) (*credentialRow, error) {
	var row credentialRow
	err := s.db.QueryRowContext(ctx, `
		SELECT access_key, secret_key_encrypted, partner_tag, marketplace, region, host, updated_at
		FROM paapi_config WHERE id = 1`).
		Scan(&row.accessKey, &row.secretKeyEncrypted, &row.partnerTag,
			&row.marketplace, &row.region, &row.host, &row.updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
