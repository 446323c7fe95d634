package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civica/balloting/internal/services/balloting/storage"
)

// GetSecret returns the named secret or storage.ErrNotFound.
func (s *Store) GetSecret(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("secret name is required")
	}

	var value []byte
	row := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM secrets WHERE name = ?`, name)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get secret: %w", err)
	}
	return value, nil
}

// PutSecretIfAbsent stores value under name unless a value already exists
// and returns whichever value is now durably stored. INSERT OR IGNORE plus
// the follow-up read makes concurrent callers converge on a single winner,
// so two processes racing key generation never split the keyspace.
func (s *Store) PutSecretIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("secret name is required")
	}
	if len(value) == 0 {
		return nil, fmt.Errorf("secret value is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO secrets (name, value, created_at) VALUES (?, ?, ?)`,
		name,
		value,
		toMillis(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("put secret: %w", err)
	}

	stored, err := s.GetSecret(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read back secret: %w", err)
	}
	return stored, nil
}
