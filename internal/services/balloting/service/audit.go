package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/civica/balloting/internal/services/balloting/storage"
)

// Audit event kinds.
const (
	auditVoterRegistered   = "voter_registered"
	auditVoterDeregistered = "voter_deregistered"
	auditBallotIssued      = "ballot_issued"
	auditBallotCounted     = "ballot_counted"
	auditBallotInvalidated = "ballot_invalidated"
)

// appendAudit records one operation in the audit trail. Events carry only
// masked ids and opaque ballot numbers. Audit failure never fails the
// operation; it is logged and dropped.
func (s *Service) appendAudit(ctx context.Context, kind, maskedNationalID, ballotNumber, outcome string) {
	if s.stores.Audit == nil {
		return
	}
	err := s.stores.Audit.AppendAuditEvent(ctx, storage.AuditEvent{
		ID:               uuid.NewString(),
		Kind:             kind,
		MaskedNationalID: maskedNationalID,
		BallotNumber:     ballotNumber,
		Outcome:          outcome,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		log.Printf("audit append failed kind=%s masked_id=%s: %v", kind, maskedNationalID, err)
	}
}

// AuditTrail returns the most recent audit events, newest first.
func (s *Service) AuditTrail(ctx context.Context, limit int) ([]storage.AuditEvent, error) {
	if s.stores.Audit == nil {
		return nil, nil
	}
	return s.stores.Audit.ListAuditEvents(ctx, limit)
}
