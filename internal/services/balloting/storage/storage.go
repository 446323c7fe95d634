// Package storage defines persistence contracts for the balloting authority.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/civica/balloting/internal/services/balloting/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// BallotRecord stores one issued ballot bound to its owner.
type BallotRecord struct {
	Number          string
	OwnerNationalID string
	Status          domain.BallotStatus
	CandidateID     int64
	Comment         string
	IssuedAt        time.Time
}

// CandidateTally stores the counted-ballot total for one candidate.
type CandidateTally struct {
	Candidate domain.Candidate
	Votes     int64
}

// AuditEvent records one state-machine operation for after-the-fact review.
// It must never carry a raw national id; only the masked form is stored.
type AuditEvent struct {
	ID               string
	Kind             string
	MaskedNationalID string
	BallotNumber     string
	Outcome          string
	CreatedAt        time.Time
}

// VoterStore persists privacy-minimized voter records keyed by normalized
// national id. Callers normalize ids before crossing this boundary.
type VoterStore interface {
	// CreateVoter inserts a new voter in RegisteredNotVoted state.
	// Returns ErrAlreadyExists when the national id is taken, including by a
	// soft-deleted record (fraud history blocks re-registration under a
	// recycled row).
	CreateVoter(ctx context.Context, voter domain.MinimalVoter) error
	// GetVoter returns one voter, soft-deleted or not.
	GetVoter(ctx context.Context, nationalID string) (domain.MinimalVoter, error)
	SetVoterStatus(ctx context.Context, nationalID string, status domain.VoterStatus) error
	// SoftDeleteVoter flags the record deleted and resets its status to
	// NotRegistered. The row survives so fraud history stays reconstructible.
	SoftDeleteVoter(ctx context.Context, nationalID string) error
}

// BallotStore persists issued ballots and their terminal outcomes.
type BallotStore interface {
	// CreateBallot inserts one Issued ballot owned by the given voter.
	CreateBallot(ctx context.Context, number, nationalID string) error
	GetBallot(ctx context.Context, number string) (BallotRecord, error)
	GetBallotStatus(ctx context.Context, number string) (domain.BallotStatus, error)
	// Owns reports whether the (nationalID, number) ownership pair exists.
	Owns(ctx context.Context, nationalID, number string) (bool, error)
	SetBallotStatus(ctx context.Context, number string, status domain.BallotStatus) error
	// FinalizeBallot records the terminal outcome of a counting attempt
	// together with the candidate choice and the already-redacted comment.
	FinalizeBallot(ctx context.Context, number string, status domain.BallotStatus, candidateID int64, redactedComment string) error
}

// CandidateStore persists election candidates.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, name string) (domain.Candidate, error)
	GetCandidate(ctx context.Context, id int64) (domain.Candidate, error)
	ListCandidates(ctx context.Context) ([]domain.Candidate, error)
}

// TallyStore serves the read-only aggregation queries over finalized state.
// Each query observes a consistent snapshot.
type TallyStore interface {
	// CountedBallotsByCandidate returns per-candidate counted-ballot totals,
	// ordered by votes descending then candidate id ascending.
	CountedBallotsByCandidate(ctx context.Context) ([]CandidateTally, error)
	// CountedComments returns the non-empty redacted comments of counted ballots.
	CountedComments(ctx context.Context) ([]string, error)
	// FraudulentVoters returns every voter in FraudCommitted state, including
	// soft-deleted records.
	FraudulentVoters(ctx context.Context) ([]domain.MinimalVoter, error)
}

// SecretStore is the durable registry for cryptographic key material.
type SecretStore interface {
	// GetSecret returns the named secret or ErrNotFound.
	GetSecret(ctx context.Context, name string) ([]byte, error)
	// PutSecretIfAbsent stores value under name unless a value already
	// exists, and returns whichever value is now durably stored. Concurrent
	// callers racing on the same name all converge on one winner.
	PutSecretIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error)
}

// AuditStore persists the append-only operation trail.
type AuditStore interface {
	AppendAuditEvent(ctx context.Context, event AuditEvent) error
	ListAuditEvents(ctx context.Context, limit int) ([]AuditEvent, error)
}
