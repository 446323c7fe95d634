package service_test

import (
	"context"
	"testing"

	"github.com/civica/balloting/internal/services/balloting/domain"
)

func TestRegisterVoterDeduplicatesOnNormalizedID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	registerVoter(t, svc, "555-55-5555", "John", "Smith")

	// Same id with different separators is the same voter.
	ok, err := svc.RegisterVoter(context.Background(), domain.Voter{
		NationalID: "555 55 5555",
		FirstName:  "John",
		LastName:   "Smith",
	})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if ok {
		t.Fatal("duplicate registration should report false")
	}
}

func TestGetVoterStatusLifecycle(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	status, err := svc.GetVoterStatus(ctx, "555555555")
	if err != nil {
		t.Fatalf("status of unknown voter: %v", err)
	}
	if status != domain.VoterNotRegistered {
		t.Fatalf("status = %v, want %v", status, domain.VoterNotRegistered)
	}

	registerVoter(t, svc, "555555555", "John", "Smith")
	status, err = svc.GetVoterStatus(ctx, "555-55-5555")
	if err != nil {
		t.Fatalf("status after registration: %v", err)
	}
	if status != domain.VoterRegisteredNotVoted {
		t.Fatalf("status = %v, want %v", status, domain.VoterRegisteredNotVoted)
	}
}

func TestDeRegisterVoter(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	registerVoter(t, svc, "555555555", "John", "Smith")

	ok, err := svc.DeRegisterVoter(ctx, "555-55-5555")
	if err != nil {
		t.Fatalf("de-register: %v", err)
	}
	if !ok {
		t.Fatal("de-registration should succeed")
	}

	status, err := svc.GetVoterStatus(ctx, "555555555")
	if err != nil {
		t.Fatalf("status after de-registration: %v", err)
	}
	if status != domain.VoterNotRegistered {
		t.Fatalf("status = %v, want %v", status, domain.VoterNotRegistered)
	}

	// A de-registered voter cannot be issued a ballot.
	if _, issued, err := svc.IssueBallot(ctx, "555555555"); err != nil {
		t.Fatalf("issue after de-registration: %v", err)
	} else if issued {
		t.Fatal("de-registered voter should not receive ballots")
	}
}

func TestDeRegisterVoterRefusesFraud(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	candidate := registerCandidate(t, svc, "Ada Lovelace")
	registerVoter(t, svc, "555555555", "John", "Smith")

	first := issueBallot(t, svc, "555555555")
	second := issueBallot(t, svc, "555555555")
	countBallot(t, svc, domain.Ballot{Number: first, CandidateID: candidate.ID}, "555555555")
	outcome := countBallot(t, svc, domain.Ballot{Number: second, CandidateID: candidate.ID}, "555555555")
	if outcome != domain.OutcomeFraudCommitted {
		t.Fatalf("second count outcome = %v, want fraud", outcome)
	}

	ok, err := svc.DeRegisterVoter(ctx, "555555555")
	if err != nil {
		t.Fatalf("de-register fraudulent voter: %v", err)
	}
	if ok {
		t.Fatal("fraud history must survive de-registration attempts")
	}
}

func TestDeRegisterUnknownVoter(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ok, err := svc.DeRegisterVoter(context.Background(), "999999999")
	if err != nil {
		t.Fatalf("de-register unknown voter: %v", err)
	}
	if ok {
		t.Fatal("unknown voter cannot be de-registered")
	}
}

func TestCandidateRegistration(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	ada := registerCandidate(t, svc, "Ada Lovelace")
	alan := registerCandidate(t, svc, "Alan Turing")

	registered, err := svc.CandidateIsRegistered(ctx, ada.ID)
	if err != nil {
		t.Fatalf("candidate is registered: %v", err)
	}
	if !registered {
		t.Fatal("candidate should be registered")
	}

	registered, err = svc.CandidateIsRegistered(ctx, alan.ID+100)
	if err != nil {
		t.Fatalf("unknown candidate check: %v", err)
	}
	if registered {
		t.Fatal("unknown candidate should not be registered")
	}

	all, err := svc.AllCandidates(ctx)
	if err != nil {
		t.Fatalf("all candidates: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("candidate count = %d, want 2", len(all))
	}
}
