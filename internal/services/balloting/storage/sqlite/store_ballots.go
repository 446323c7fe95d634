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

// CreateBallot inserts one Issued ballot bound to its owner.
func (s *Store) CreateBallot(ctx context.Context, number, nationalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	number = strings.TrimSpace(number)
	nationalID = strings.TrimSpace(nationalID)
	if number == "" {
		return fmt.Errorf("ballot number is required")
	}
	if nationalID == "" {
		return fmt.Errorf("national id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO ballots (number, owner_national_id, status, issued_at)
		 VALUES (?, ?, ?, ?)`,
		number,
		nationalID,
		int64(domain.BallotIssued),
		toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create ballot: %w", err)
	}
	return nil
}

// GetBallot returns one ballot record by number.
func (s *Store) GetBallot(ctx context.Context, number string) (storage.BallotRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BallotRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BallotRecord{}, fmt.Errorf("storage is not configured")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return storage.BallotRecord{}, fmt.Errorf("ballot number is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT number, owner_national_id, status, candidate_id, comment, issued_at
		   FROM ballots
		  WHERE number = ?`,
		number,
	)

	var record storage.BallotRecord
	var status int64
	var candidateID sql.NullInt64
	var issuedAt int64
	err := row.Scan(
		&record.Number,
		&record.OwnerNationalID,
		&status,
		&candidateID,
		&record.Comment,
		&issuedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BallotRecord{}, storage.ErrNotFound
		}
		return storage.BallotRecord{}, fmt.Errorf("get ballot: %w", err)
	}
	record.Status = domain.BallotStatus(status)
	if candidateID.Valid {
		record.CandidateID = candidateID.Int64
	}
	record.IssuedAt = fromMillis(issuedAt)
	return record, nil
}

// GetBallotStatus returns one ballot's persisted status.
func (s *Store) GetBallotStatus(ctx context.Context, number string) (domain.BallotStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.BallotStatusUnspecified, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.BallotStatusUnspecified, fmt.Errorf("storage is not configured")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.BallotStatusUnspecified, fmt.Errorf("ballot number is required")
	}

	var status int64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT status FROM ballots WHERE number = ?`, number)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BallotStatusUnspecified, storage.ErrNotFound
		}
		return domain.BallotStatusUnspecified, fmt.Errorf("get ballot status: %w", err)
	}
	return domain.BallotStatus(status), nil
}

// Owns reports whether the ownership pair (nationalID, number) exists.
func (s *Store) Owns(ctx context.Context, nationalID, number string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	var found int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT 1 FROM ballots WHERE number = ? AND owner_national_id = ?`,
		strings.TrimSpace(number),
		strings.TrimSpace(nationalID),
	)
	if err := row.Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check ballot ownership: %w", err)
	}
	return true, nil
}

// SetBallotStatus updates one ballot's status without touching its vote.
func (s *Store) SetBallotStatus(ctx context.Context, number string, status domain.BallotStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return fmt.Errorf("ballot number is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE ballots SET status = ?, finalized_at = ? WHERE number = ?`,
		int64(status),
		toMillis(time.Now()),
		number,
	)
	if err != nil {
		return fmt.Errorf("set ballot status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set ballot status: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// FinalizeBallot records one counting outcome with the candidate choice and
// the already-redacted comment. Raw comments must never reach this method.
func (s *Store) FinalizeBallot(ctx context.Context, number string, status domain.BallotStatus, candidateID int64, redactedComment string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return fmt.Errorf("ballot number is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE ballots
		    SET status = ?, candidate_id = ?, comment = ?, finalized_at = ?
		  WHERE number = ?`,
		int64(status),
		candidateID,
		redactedComment,
		toMillis(time.Now()),
		number,
	)
	if err != nil {
		return fmt.Errorf("finalize ballot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize ballot: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
