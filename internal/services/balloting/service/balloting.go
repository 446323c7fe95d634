package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/redact"
	"github.com/civica/balloting/internal/services/balloting/storage"
)

// IssueBallot mints a new ballot for a registered voter. Old ballots stay
// untouched: a voter who spoils a ballot simply requests another, and only
// one may ultimately count. Unregistered voters get ok=false and no record
// is created.
func (s *Service) IssueBallot(ctx context.Context, nationalID string) (number string, ok bool, err error) {
	ctx, span := s.tracer.Start(ctx, "balloting.IssueBallot")
	defer span.End()

	id := domain.NormalizeNationalID(nationalID)
	if id == "" {
		return "", false, nil
	}

	voter, err := s.stores.Voters.GetVoter(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get voter: %w", err)
	}
	if voter.Deleted {
		return "", false, nil
	}

	number, err = s.cipher.IssueBallotNumber(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("issue ballot number: %w", err)
	}
	if err := s.stores.Ballots.CreateBallot(ctx, number, id); err != nil {
		return "", false, fmt.Errorf("persist ballot: %w", err)
	}
	s.appendAudit(ctx, auditBallotIssued, voter.MaskedNationalID, number, "")
	return number, true, nil
}

// CountBallot validates and counts one ballot for one voter, redacting the
// comment before anything persists. Business conditions come back as
// outcomes, never errors; only storage or cipher failure propagates.
//
// The whole read-modify-write runs under the voter's lock: when two ballots
// for the same voter race, exactly one observes RegisteredNotVoted and
// counts, and the other observes the updated state and is flagged fraud.
func (s *Service) CountBallot(ctx context.Context, ballot domain.Ballot, nationalID string) (domain.CountOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "balloting.CountBallot")
	defer span.End()

	id := domain.NormalizeNationalID(nationalID)

	unlock := s.locks.lock(id)
	defer unlock()

	outcome, err := s.countLocked(ctx, ballot, id)
	if err != nil {
		return domain.OutcomeUnspecified, err
	}
	span.SetAttributes(attribute.String("balloting.outcome", outcome.String()))
	s.appendAudit(ctx, auditBallotCounted, domain.MaskNationalID(id), ballot.Number, outcome.String())
	return outcome, nil
}

func (s *Service) countLocked(ctx context.Context, ballot domain.Ballot, id string) (domain.CountOutcome, error) {
	voter, err := s.stores.Voters.GetVoter(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.OutcomeVoterNotRegistered, nil
		}
		return domain.OutcomeUnspecified, fmt.Errorf("get voter: %w", err)
	}
	if voter.Deleted {
		return domain.OutcomeVoterNotRegistered, nil
	}

	owns, err := s.stores.Ballots.Owns(ctx, id, ballot.Number)
	if err != nil {
		return domain.OutcomeUnspecified, fmt.Errorf("check ownership: %w", err)
	}
	if !owns {
		// Covers both unknown ballot numbers and ballots issued to a
		// different voter; the caller cannot tell the cases apart.
		return domain.OutcomeVoterBallotMismatch, nil
	}

	status, err := s.stores.Ballots.GetBallotStatus(ctx, ballot.Number)
	if err != nil {
		return domain.OutcomeUnspecified, fmt.Errorf("get ballot status: %w", err)
	}

	switch status {
	case domain.BallotIssued:
		return s.countIssuedBallot(ctx, ballot, voter)
	case domain.BallotCounted:
		// The same ballot submitted a second time: the first count
		// succeeded, so this is a double-count attempt.
		if err := s.markFraud(ctx, voter.NationalID, ballot.Number); err != nil {
			return domain.OutcomeUnspecified, err
		}
		return domain.OutcomeFraudCommitted, nil
	case domain.BallotFraudCommitted:
		return domain.OutcomeFraudCommitted, nil
	case domain.BallotInvalid:
		return domain.OutcomeInvalidBallot, nil
	default:
		return domain.OutcomeUnspecified, fmt.Errorf("ballot %s has invalid status %d", ballot.Number, status)
	}
}

func (s *Service) countIssuedBallot(ctx context.Context, ballot domain.Ballot, voter domain.MinimalVoter) (domain.CountOutcome, error) {
	switch voter.Status {
	case domain.VoterRegisteredNotVoted:
		firstName, err := s.cipher.DecryptName(ctx, voter.EncFirstName)
		if err != nil {
			return domain.OutcomeUnspecified, fmt.Errorf("decrypt first name: %w", err)
		}
		lastName, err := s.cipher.DecryptName(ctx, voter.EncLastName)
		if err != nil {
			return domain.OutcomeUnspecified, fmt.Errorf("decrypt last name: %w", err)
		}
		redacted := redact.Comment(ballot.Comment, firstName, lastName)
		if err := s.stores.Ballots.FinalizeBallot(ctx, ballot.Number, domain.BallotCounted, ballot.CandidateID, redacted); err != nil {
			return domain.OutcomeUnspecified, fmt.Errorf("finalize ballot: %w", err)
		}
		if err := s.stores.Voters.SetVoterStatus(ctx, voter.NationalID, domain.VoterBallotCounted); err != nil {
			return domain.OutcomeUnspecified, fmt.Errorf("set voter status: %w", err)
		}
		return domain.OutcomeBallotCounted, nil
	case domain.VoterBallotCounted:
		// The voter already has a counted ballot; a second successful
		// count attempt on a fresh ballot is fraud.
		if err := s.markFraud(ctx, voter.NationalID, ballot.Number); err != nil {
			return domain.OutcomeUnspecified, err
		}
		return domain.OutcomeFraudCommitted, nil
	case domain.VoterFraudCommitted:
		return domain.OutcomeFraudCommitted, nil
	default:
		return domain.OutcomeUnspecified, fmt.Errorf("voter has invalid status %d", voter.Status)
	}
}

func (s *Service) markFraud(ctx context.Context, nationalID, ballotNumber string) error {
	if err := s.stores.Voters.SetVoterStatus(ctx, nationalID, domain.VoterFraudCommitted); err != nil {
		return fmt.Errorf("set voter fraud status: %w", err)
	}
	if err := s.stores.Ballots.SetBallotStatus(ctx, ballotNumber, domain.BallotFraudCommitted); err != nil {
		return fmt.Errorf("set ballot fraud status: %w", err)
	}
	return nil
}

// InvalidateBallot marks a ballot unusable. Counted ballots cannot be
// invalidated; Issued and FraudCommitted ballots can. Returns false for
// unknown numbers and already-counted ballots, with no mutation.
func (s *Service) InvalidateBallot(ctx context.Context, number string) (bool, error) {
	record, err := s.stores.Ballots.GetBallot(ctx, number)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get ballot: %w", err)
	}

	unlock := s.locks.lock(record.OwnerNationalID)
	defer unlock()

	// Re-read under the lock: a concurrent count may have finalized it.
	status, err := s.stores.Ballots.GetBallotStatus(ctx, number)
	if err != nil {
		return false, fmt.Errorf("get ballot status: %w", err)
	}
	if status == domain.BallotCounted {
		return false, nil
	}
	if status == domain.BallotInvalid {
		return true, nil
	}
	if err := s.stores.Ballots.SetBallotStatus(ctx, number, domain.BallotInvalid); err != nil {
		return false, fmt.Errorf("invalidate ballot: %w", err)
	}
	s.appendAudit(ctx, auditBallotInvalidated, domain.MaskNationalID(record.OwnerNationalID), number, "")
	return true, nil
}

// VerifyBallot reports whether the ballot number was issued to the given
// voter. It is the non-mutating pre-cast sanity check; counting has its own
// ownership verification.
func (s *Service) VerifyBallot(ctx context.Context, nationalID, number string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "balloting.VerifyBallot")
	defer span.End()

	owns, err := s.stores.Ballots.Owns(ctx, domain.NormalizeNationalID(nationalID), number)
	if err != nil {
		return false, fmt.Errorf("check ownership: %w", err)
	}
	return owns, nil
}
