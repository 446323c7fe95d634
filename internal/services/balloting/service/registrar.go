package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/storage"
)

// RegisterVoter registers a voter for the election. It performs no
// eligibility or legal verification: it simply records the voter unless the
// national id is already taken. Names are encrypted and the id masked before
// anything reaches persistence.
func (s *Service) RegisterVoter(ctx context.Context, voter domain.Voter) (bool, error) {
	nationalID := domain.NormalizeNationalID(voter.NationalID)
	if nationalID == "" {
		return false, fmt.Errorf("national id is required")
	}
	if strings.TrimSpace(voter.FirstName) == "" || strings.TrimSpace(voter.LastName) == "" {
		return false, fmt.Errorf("voter name is required")
	}

	minimal, err := s.cipher.MinimalVoter(ctx, voter)
	if err != nil {
		return false, fmt.Errorf("minimize voter: %w", err)
	}
	minimal.Status = domain.VoterRegisteredNotVoted

	unlock := s.locks.lock(nationalID)
	defer unlock()

	if err := s.stores.Voters.CreateVoter(ctx, minimal); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("register voter: %w", err)
	}
	s.appendAudit(ctx, auditVoterRegistered, minimal.MaskedNationalID, "", "")
	return true, nil
}

// GetVoterStatus reports the registration status that best describes a
// voter. Missing and de-registered voters are both NotRegistered.
func (s *Service) GetVoterStatus(ctx context.Context, nationalID string) (domain.VoterStatus, error) {
	id := domain.NormalizeNationalID(nationalID)
	voter, err := s.stores.Voters.GetVoter(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.VoterNotRegistered, nil
		}
		return domain.VoterStatusUnspecified, fmt.Errorf("get voter: %w", err)
	}
	if voter.Deleted {
		return domain.VoterNotRegistered, nil
	}
	return voter.Status, nil
}

// DeRegisterVoter removes a voter from the election at their request.
// Fraudulent voters cannot be de-registered: fraud history is permanent.
// The record is only soft-deleted so that history stays reconstructible.
func (s *Service) DeRegisterVoter(ctx context.Context, nationalID string) (bool, error) {
	id := domain.NormalizeNationalID(nationalID)
	if id == "" {
		return false, nil
	}

	unlock := s.locks.lock(id)
	defer unlock()

	voter, err := s.stores.Voters.GetVoter(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get voter: %w", err)
	}
	if voter.Status == domain.VoterFraudCommitted {
		return false, nil
	}
	if voter.Deleted {
		return true, nil
	}
	if err := s.stores.Voters.SoftDeleteVoter(ctx, id); err != nil {
		return false, fmt.Errorf("de-register voter: %w", err)
	}
	s.appendAudit(ctx, auditVoterDeregistered, voter.MaskedNationalID, "", "")
	return true, nil
}

// RegisterCandidate registers a candidate for the election.
func (s *Service) RegisterCandidate(ctx context.Context, name string) (domain.Candidate, error) {
	candidate, err := s.stores.Candidates.CreateCandidate(ctx, name)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("register candidate: %w", err)
	}
	return candidate, nil
}

// CandidateIsRegistered reports whether the candidate id is known.
func (s *Service) CandidateIsRegistered(ctx context.Context, id int64) (bool, error) {
	_, err := s.stores.Candidates.GetCandidate(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get candidate: %w", err)
	}
	return true, nil
}

// AllCandidates returns every registered candidate.
func (s *Service) AllCandidates(ctx context.Context) ([]domain.Candidate, error) {
	candidates, err := s.stores.Candidates.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}
