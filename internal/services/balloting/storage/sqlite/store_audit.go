package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civica/balloting/internal/services/balloting/storage"
)

// AppendAuditEvent inserts one audit record. Events are append-only.
func (s *Store) AppendAuditEvent(ctx context.Context, event storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("audit event id is required")
	}
	if strings.TrimSpace(event.Kind) == "" {
		return fmt.Errorf("audit event kind is required")
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO audit_events (id, kind, masked_national_id, ballot_number, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Kind,
		event.MaskedNationalID,
		event.BallotNumber,
		event.Outcome,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns the most recent audit records, newest first.
func (s *Store) ListAuditEvents(ctx context.Context, limit int) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, kind, masked_national_id, ballot_number, outcome, created_at
		   FROM audit_events
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []storage.AuditEvent
	for rows.Next() {
		var event storage.AuditEvent
		var createdAt int64
		if err := rows.Scan(
			&event.ID,
			&event.Kind,
			&event.MaskedNationalID,
			&event.BallotNumber,
			&event.Outcome,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list audit events: %w", err)
		}
		event.CreatedAt = fromMillis(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
