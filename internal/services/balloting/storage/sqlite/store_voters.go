package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/storage"
)

// CreateVoter inserts one voter record in RegisteredNotVoted state.
func (s *Store) CreateVoter(ctx context.Context, voter domain.MinimalVoter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	nationalID := strings.TrimSpace(voter.NationalID)
	if nationalID == "" {
		return fmt.Errorf("national id is required")
	}
	if voter.EncFirstName == "" || voter.EncLastName == "" {
		return fmt.Errorf("encrypted names are required")
	}
	status := voter.Status
	if status == domain.VoterStatusUnspecified {
		status = domain.VoterRegisteredNotVoted
	}
	now := toMillis(time.Now())

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO voters (
		   national_id,
		   enc_first_name,
		   enc_last_name,
		   masked_national_id,
		   status,
		   deleted,
		   created_at,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		nationalID,
		voter.EncFirstName,
		voter.EncLastName,
		voter.MaskedNationalID,
		int64(status),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create voter: %w", err)
	}
	return nil
}

// GetVoter returns one voter record by normalized national id.
func (s *Store) GetVoter(ctx context.Context, nationalID string) (domain.MinimalVoter, error) {
	if err := ctx.Err(); err != nil {
		return domain.MinimalVoter{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.MinimalVoter{}, fmt.Errorf("storage is not configured")
	}
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return domain.MinimalVoter{}, fmt.Errorf("national id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT national_id, enc_first_name, enc_last_name, masked_national_id, status, deleted
		   FROM voters
		  WHERE national_id = ?`,
		nationalID,
	)

	var voter domain.MinimalVoter
	var status int64
	var deleted int64
	err := row.Scan(
		&voter.NationalID,
		&voter.EncFirstName,
		&voter.EncLastName,
		&voter.MaskedNationalID,
		&status,
		&deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MinimalVoter{}, storage.ErrNotFound
		}
		return domain.MinimalVoter{}, fmt.Errorf("get voter: %w", err)
	}
	voter.Status = domain.VoterStatus(status)
	voter.Deleted = deleted != 0
	return voter, nil
}

// SetVoterStatus updates one voter's status.
func (s *Store) SetVoterStatus(ctx context.Context, nationalID string, status domain.VoterStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return fmt.Errorf("national id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE voters SET status = ?, updated_at = ? WHERE national_id = ?`,
		int64(status),
		toMillis(time.Now()),
		nationalID,
	)
	if err != nil {
		return fmt.Errorf("set voter status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set voter status: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SoftDeleteVoter flags the voter deleted and resets its status. The row is
// never physically removed: fraud history must stay reconstructible.
func (s *Store) SoftDeleteVoter(ctx context.Context, nationalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return fmt.Errorf("national id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE voters SET deleted = 1, status = ?, updated_at = ? WHERE national_id = ?`,
		int64(domain.VoterNotRegistered),
		toMillis(time.Now()),
		nationalID,
	)
	if err != nil {
		return fmt.Errorf("soft delete voter: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete voter: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
