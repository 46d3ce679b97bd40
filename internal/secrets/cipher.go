// Package secrets implements the at-rest encryption used for stored secret
// values and API credentials. Values are sealed with AES-256-GCM under a
// process-wide key derived from a configured passphrase and serialized as a
// three-segment envelope: base64(iv):base64(ciphertext):base64(tag).
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	nonceSize = 12
	tagSize   = 16

	envelopeDelimiter = ":"
)

// ConfigError reports missing or malformed encryption configuration.
// It is a client-side fault and is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "secrets config: " + e.Reason }

// DecryptError reports a malformed envelope or an authentication failure.
// Callers should treat the value as unavailable rather than as corruption
// requiring an alarm.
type DecryptError struct {
	Reason string
	Err    error
}

func (e *DecryptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decrypt: %s: %v", e.Reason, e.Err)
	}
	return "decrypt: " + e.Reason
}

func (e *DecryptError) Unwrap() error { return e.Err }

// DeriveKey turns the configured passphrase into an AES-256 key. The
// passphrase must be at least 32 characters; only the first 32 bytes of its
// UTF-8 encoding are used. This is a deliberate truncation, not a hash-based
// derivation: existing envelopes stay decryptable as long as the leading 32
// bytes of the passphrase are stable.
func DeriveKey(passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, &ConfigError{Reason: "encryption passphrase is not set"}
	}
	raw := []byte(passphrase)
	if len(raw) < KeySize {
		return nil, &ConfigError{Reason: fmt.Sprintf("encryption passphrase must be at least %d characters", KeySize)}
	}
	key := make([]byte, KeySize)
	copy(key, raw[:KeySize])
	return key, nil
}

// Cipher seals and opens secret envelopes with a fixed key. The key is
// injected at construction time so tests can supply arbitrary keys without
// touching process environment.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte key, typically the output of
// DeriveKey.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, &ConfigError{Reason: fmt.Sprintf("key must be %d bytes, got %d", KeySize, len(key))}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plain under a fresh 12-byte random IV and returns the
// serialized envelope. Encryption is non-deterministic: two calls with the
// same plaintext produce different envelopes.
func (c *Cipher) Encrypt(plain string) (string, error) {
	iv := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("read iv: %w", err)
	}
	sealed := c.aead.Seal(nil, iv, []byte(plain), nil)
	// Seal appends the GCM tag to the ciphertext; split them so the envelope
	// carries three independent segments.
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	segments := []string{
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(ct),
		base64.StdEncoding.EncodeToString(tag),
	}
	return strings.Join(segments, envelopeDelimiter), nil
}

// Decrypt opens an envelope produced by Encrypt. It fails closed: a wrong
// segment count, a bad base64 segment, or a tag mismatch all return a
// DecryptError and never a partial plaintext.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	segments := strings.Split(envelope, envelopeDelimiter)
	if len(segments) != 3 {
		return "", &DecryptError{Reason: fmt.Sprintf("envelope has %d segments, want 3", len(segments))}
	}
	iv, err := base64.StdEncoding.DecodeString(segments[0])
	if err != nil {
		return "", &DecryptError{Reason: "bad iv encoding", Err: err}
	}
	if len(iv) != nonceSize {
		return "", &DecryptError{Reason: fmt.Sprintf("iv is %d bytes, want %d", len(iv), nonceSize)}
	}
	ct, err := base64.StdEncoding.DecodeString(segments[1])
	if err != nil {
		return "", &DecryptError{Reason: "bad ciphertext encoding", Err: err}
	}
	tag, err := base64.StdEncoding.DecodeString(segments[2])
	if err != nil {
		return "", &DecryptError{Reason: "bad tag encoding", Err: err}
	}

	plain, err := c.aead.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", &DecryptError{Reason: "authentication failed", Err: err}
	}
	return string(plain), nil
}

// Mask returns a display-safe preview of a secret value.
func Mask(secret string) string {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 6 {
		return "***"
	}
	return trimmed[:3] + "..." + trimmed[len(trimmed)-2:]
}
