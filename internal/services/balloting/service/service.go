// Package service implements the voter/ballot state machine for the
// balloting authority: registration, issuance, counting, invalidation, and
// the read-side tallies.
package service

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/civica/balloting/internal/services/balloting/cipher"
	"github.com/civica/balloting/internal/services/balloting/storage"
)

const tracerName = "github.com/civica/balloting/internal/services/balloting/service"

// Stores groups the persistence contracts the service depends on.
type Stores struct {
	Voters     storage.VoterStore
	Ballots    storage.BallotStore
	Candidates storage.CandidateStore
	Tally      storage.TallyStore
	// Audit is optional; a nil store disables the audit trail.
	Audit storage.AuditStore
}

// Service owns the balloting state machine. All mutating operations on one
// voter serialize through a per-voter lock, so concurrent counting attempts
// can never both observe the voter's pre-count state.
type Service struct {
	stores Stores
	cipher *cipher.Cipher
	locks  *voterLocks
	tracer trace.Tracer
}

// New builds a Service over the given stores and identifier cipher.
func New(stores Stores, ciph *cipher.Cipher) (*Service, error) {
	if stores.Voters == nil {
		return nil, fmt.Errorf("voter store is required")
	}
	if stores.Ballots == nil {
		return nil, fmt.Errorf("ballot store is required")
	}
	if stores.Candidates == nil {
		return nil, fmt.Errorf("candidate store is required")
	}
	if stores.Tally == nil {
		return nil, fmt.Errorf("tally store is required")
	}
	if ciph == nil {
		return nil, fmt.Errorf("identifier cipher is required")
	}
	return &Service{
		stores: stores,
		cipher: ciph,
		locks:  newVoterLocks(),
		tracer: otel.Tracer(tracerName),
	}, nil
}
