package cipher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/civica/balloting/internal/services/balloting/domain"
)

// envelope is the serialized form of an encrypted name.
type envelope struct {
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
	Nonce      string `json:"nonce"`
}

// EncryptName seals a voter name into a JSON envelope under the name key.
// The plaintext is NFC-normalized first so visually equal names produce the
// same bytes, and a fresh nonce keeps repeated encryptions unrelated.
func (c *Cipher) EncryptName(ctx context.Context, name string) (string, error) {
	normalized := norm.NFC.String(strings.TrimSpace(name))
	aead, err := c.nameAEAD(ctx)
	if err != nil {
		return "", err
	}
	nonce, sealed, err := seal(aead, []byte(normalized))
	if err != nil {
		return "", err
	}
	tagStart := len(sealed) - aead.Overhead()
	payload, err := json.Marshal(envelope{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:tagStart]),
		Tag:        base64.StdEncoding.EncodeToString(sealed[tagStart:]),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
	})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return string(payload), nil
}

// DecryptName opens a JSON envelope produced by EncryptName. Tampered input
// or a wrong key fails with ErrDecryptFailed.
func (c *Cipher) DecryptName(ctx context.Context, sealedName string) (string, error) {
	var env envelope
	if err := json.Unmarshal([]byte(sealedName), &env); err != nil {
		return "", fmt.Errorf("%w: unmarshal envelope: %v", ErrDecryptFailed, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decode ciphertext: %v", ErrDecryptFailed, err)
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil {
		return "", fmt.Errorf("%w: decode tag: %v", ErrDecryptFailed, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return "", fmt.Errorf("%w: decode nonce: %v", ErrDecryptFailed, err)
	}
	aead, err := c.nameAEAD(ctx)
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

// MinimalVoter converts a sensitive registration request into the
// privacy-minimized form that is allowed to reach persistence.
func (c *Cipher) MinimalVoter(ctx context.Context, voter domain.Voter) (domain.MinimalVoter, error) {
	encFirst, err := c.EncryptName(ctx, voter.FirstName)
	if err != nil {
		return domain.MinimalVoter{}, fmt.Errorf("encrypt first name: %w", err)
	}
	encLast, err := c.EncryptName(ctx, voter.LastName)
	if err != nil {
		return domain.MinimalVoter{}, fmt.Errorf("encrypt last name: %w", err)
	}
	return domain.MinimalVoter{
		NationalID:       domain.NormalizeNationalID(voter.NationalID),
		EncFirstName:     encFirst,
		EncLastName:      encLast,
		MaskedNationalID: domain.MaskNationalID(voter.NationalID),
	}, nil
}
