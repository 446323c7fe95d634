// Package cipher issues unlinkable ballot numbers and reversible name
// envelopes for the balloting authority.
//
// Both operations use XChaCha20-Poly1305 with a fresh random 24-byte nonce
// per call, so encrypting the same plaintext twice yields unrelated
// ciphertexts. That is the property ballot secrecy rests on: two ballot
// numbers issued to one voter cannot be correlated without the key.
package cipher

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/storage"
)

const (
	ballotNumberKeyName = "ballot_number_encryption_key"
	voterNameKeyName    = "voter_name_encryption_key"

	segmentSeparator = "-"
)

// ErrDecryptFailed indicates tag verification failed: the input was tampered
// with or sealed under a different key. Decryption never silently returns
// garbage plaintext.
var ErrDecryptFailed = errors.New("decryption failed")

// Cipher seals and opens voter identifiers. Keys are generated lazily on
// first use and persisted through the secret registry, so every process
// sharing the registry converges on the same key material.
type Cipher struct {
	secrets storage.SecretStore

	mu        sync.Mutex
	ballotKey cipher.AEAD
	nameKey   cipher.AEAD
}

// New builds a Cipher backed by the given secret registry.
func New(secrets storage.SecretStore) (*Cipher, error) {
	if secrets == nil {
		return nil, fmt.Errorf("secret store is required")
	}
	return &Cipher{secrets: secrets}, nil
}

// IssueBallotNumber mints an opaque ballot number for a national id.
//
// The number encodes nonce, authentication tag, and ciphertext as delimited
// base64 segments, so the key holder can later decrypt it to settle a
// dispute. It is never derived from a counter or sequence.
func (c *Cipher) IssueBallotNumber(ctx context.Context, nationalID string) (string, error) {
	normalized := domain.NormalizeNationalID(nationalID)
	if normalized == "" {
		return "", fmt.Errorf("national id is required")
	}
	aead, err := c.ballotAEAD(ctx)
	if err != nil {
		return "", err
	}
	nonce, sealed, err := seal(aead, []byte(normalized))
	if err != nil {
		return "", err
	}
	// sealed is ciphertext || tag; split them so the encoding carries the
	// three segments explicitly.
	tagStart := len(sealed) - aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]
	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ciphertext),
	}, segmentSeparator), nil
}

// DecryptBallotNumber recovers the normalized national id a ballot number
// was issued to. Only the authority holding the registry key can do this.
func (c *Cipher) DecryptBallotNumber(ctx context.Context, ballotNumber string) (string, error) {
	segments := strings.Split(strings.TrimSpace(ballotNumber), segmentSeparator)
	if len(segments) != 3 {
		return "", fmt.Errorf("%w: malformed ballot number", ErrDecryptFailed)
	}
	nonce, err := base64.StdEncoding.DecodeString(segments[0])
	if err != nil {
		return "", fmt.Errorf("%w: decode nonce: %v", ErrDecryptFailed, err)
	}
	tag, err := base64.StdEncoding.DecodeString(segments[1])
	if err != nil {
		return "", fmt.Errorf("%w: decode tag: %v", ErrDecryptFailed, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(segments[2])
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %v", ErrDecryptFailed, err)
	}
	aead, err := c.ballotAEAD(ctx)
	if err != nil {
		return "", err
	}
	if len(nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce length", ErrDecryptFailed)
	}
	plaintext, err := aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return string(plaintext), nil
}

// ballotAEAD returns the ballot-number AEAD, materializing the key on first use.
func (c *Cipher) ballotAEAD(ctx context.Context) (cipher.AEAD, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ballotKey != nil {
		return c.ballotKey, nil
	}
	aead, err := c.loadAEAD(ctx, ballotNumberKeyName)
	if err != nil {
		return nil, err
	}
	c.ballotKey = aead
	return aead, nil
}

// nameAEAD returns the name-envelope AEAD, materializing the key on first use.
func (c *Cipher) nameAEAD(ctx context.Context) (cipher.AEAD, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nameKey != nil {
		return c.nameKey, nil
	}
	aead, err := c.loadAEAD(ctx, voterNameKeyName)
	if err != nil {
		return nil, err
	}
	c.nameKey = aead
	return aead, nil
}

// loadAEAD fetches or creates the named key through the registry's atomic
// put-if-absent, so two racing processes both end up with the winning key.
func (c *Cipher) loadAEAD(ctx context.Context, name string) (cipher.AEAD, error) {
	key, err := c.secrets.GetSecret(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		fresh := make([]byte, chacha20poly1305.KeySize)
		if _, err := io.ReadFull(rand.Reader, fresh); err != nil {
			return nil, fmt.Errorf("generate key %s: %w", name, err)
		}
		key, err = c.secrets.PutSecretIfAbsent(ctx, name, fresh)
		if err != nil {
			return nil, fmt.Errorf("persist key %s: %w", name, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load key %s: %w", name, err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("build aead %s: %w", name, err)
	}
	return aead, nil
}

func seal(aead cipher.AEAD, plaintext []byte) (nonce, sealed []byte, err error) {
	nonce = make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("read nonce: %w", err)
	}
	return nonce, aead.Seal(nil, nonce, plaintext, nil), nil
}
