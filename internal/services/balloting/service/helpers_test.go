package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/civica/balloting/internal/services/balloting/cipher"
	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/service"
	"github.com/civica/balloting/internal/services/balloting/storage/sqlite"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "balloting.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	ciph, err := cipher.New(store)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	svc, err := service.New(service.Stores{
		Voters:     store,
		Ballots:    store,
		Candidates: store,
		Tally:      store,
		Audit:      store,
	}, ciph)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func registerVoter(t *testing.T, svc *service.Service, nationalID, firstName, lastName string) {
	t.Helper()
	ok, err := svc.RegisterVoter(context.Background(), domain.Voter{
		NationalID: nationalID,
		FirstName:  firstName,
		LastName:   lastName,
	})
	if err != nil {
		t.Fatalf("register voter %s: %v", nationalID, err)
	}
	if !ok {
		t.Fatalf("voter %s already registered", nationalID)
	}
}

func issueBallot(t *testing.T, svc *service.Service, nationalID string) string {
	t.Helper()
	number, ok, err := svc.IssueBallot(context.Background(), nationalID)
	if err != nil {
		t.Fatalf("issue ballot for %s: %v", nationalID, err)
	}
	if !ok {
		t.Fatalf("issue ballot for %s: voter not registered", nationalID)
	}
	return number
}

func registerCandidate(t *testing.T, svc *service.Service, name string) domain.Candidate {
	t.Helper()
	candidate, err := svc.RegisterCandidate(context.Background(), name)
	if err != nil {
		t.Fatalf("register candidate %s: %v", name, err)
	}
	return candidate
}

func countBallot(t *testing.T, svc *service.Service, ballot domain.Ballot, nationalID string) domain.CountOutcome {
	t.Helper()
	outcome, err := svc.CountBallot(context.Background(), ballot, nationalID)
	if err != nil {
		t.Fatalf("count ballot %s: %v", ballot.Number, err)
	}
	return outcome
}
