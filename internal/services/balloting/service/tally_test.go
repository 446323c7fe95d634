package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/service"
)

// castBallots registers n voters with ids derived from seed and counts one
// ballot per voter for the given candidate.
func castBallots(t *testing.T, svc *service.Service, candidate domain.Candidate, seed, n int, comment string) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%09d", seed+i)
		registerVoter(t, svc, id, "Alex", "Rivera")
		number := issueBallot(t, svc, id)
		outcome := countBallot(t, svc, domain.Ballot{
			Number:      number,
			CandidateID: candidate.ID,
			Comment:     comment,
		}, id)
		if outcome != domain.OutcomeBallotCounted {
			t.Fatalf("count for voter %s = %v, want counted", id, outcome)
		}
	}
}

func TestElectionWinner(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ada := registerCandidate(t, svc, "Ada Lovelace")
	grace := registerCandidate(t, svc, "Grace Hopper")
	alan := registerCandidate(t, svc, "Alan Turing")

	castBallots(t, svc, ada, 100000000, 3, "")
	castBallots(t, svc, grace, 200000000, 5, "")
	castBallots(t, svc, alan, 300000000, 1, "")

	winner, err := svc.ElectionWinner(context.Background())
	if err != nil {
		t.Fatalf("winner: %v", err)
	}
	if winner.ID != grace.ID {
		t.Fatalf("winner = %+v, want %+v", winner, grace)
	}
}

func TestElectionWinnerTieBreaksOnLowestCandidateID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	first := registerCandidate(t, svc, "Ada Lovelace")
	second := registerCandidate(t, svc, "Grace Hopper")
	if second.ID <= first.ID {
		t.Fatalf("candidate ids not ascending: %d then %d", first.ID, second.ID)
	}

	castBallots(t, svc, second, 400000000, 2, "")
	castBallots(t, svc, first, 500000000, 2, "")

	winner, err := svc.ElectionWinner(context.Background())
	if err != nil {
		t.Fatalf("winner: %v", err)
	}
	if winner.ID != first.ID {
		t.Fatalf("tie winner = %+v, want earliest-registered %+v", winner, first)
	}
}

func TestElectionWinnerWithoutBallots(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	registerCandidate(t, svc, "Ada Lovelace")

	_, err := svc.ElectionWinner(context.Background())
	if !errors.Is(err, service.ErrNoBallotsCounted) {
		t.Fatalf("err = %v, want ErrNoBallotsCounted", err)
	}
}

func TestBallotCommentsAreRedacted(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	candidate := registerCandidate(t, svc, "Ada Lovelace")

	registerVoter(t, svc, "111111111", "John", "Smith")
	number := issueBallot(t, svc, "111111111")
	countBallot(t, svc, domain.Ballot{
		Number:      number,
		CandidateID: candidate.ID,
		Comment:     "John Smith at john@example.com, great turnout",
	}, "111111111")

	// Empty comments are dropped from the listing.
	registerVoter(t, svc, "222222222", "Linda", "Navarro")
	number = issueBallot(t, svc, "222222222")
	countBallot(t, svc, domain.Ballot{Number: number, CandidateID: candidate.ID}, "222222222")

	comments, err := svc.BallotComments(context.Background())
	if err != nil {
		t.Fatalf("ballot comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("comment count = %d, want 1", len(comments))
	}
	comment := comments[0]
	for _, leak := range []string{"John", "Smith", "john@example.com"} {
		if strings.Contains(comment, leak) {
			t.Fatalf("comment leaked %q: %q", leak, comment)
		}
	}
	if !strings.Contains(comment, "great turnout") {
		t.Fatalf("comment lost its clean text: %q", comment)
	}
}

func TestFraudulentVoters(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	candidate := registerCandidate(t, svc, "Ada Lovelace")

	// Honest voter, one ballot.
	registerVoter(t, svc, "111111111", "Linda", "Navarro")
	number := issueBallot(t, svc, "111111111")
	countBallot(t, svc, domain.Ballot{Number: number, CandidateID: candidate.ID}, "111111111")

	// Double voter.
	registerVoter(t, svc, "222222222", "John", "Smith")
	first := issueBallot(t, svc, "222222222")
	second := issueBallot(t, svc, "222222222")
	countBallot(t, svc, domain.Ballot{Number: first, CandidateID: candidate.ID}, "222222222")
	if outcome := countBallot(t, svc, domain.Ballot{Number: second, CandidateID: candidate.ID}, "222222222"); outcome != domain.OutcomeFraudCommitted {
		t.Fatalf("second count = %v, want fraud", outcome)
	}

	names, err := svc.FraudulentVoters(context.Background())
	if err != nil {
		t.Fatalf("fraudulent voters: %v", err)
	}
	if len(names) != 1 || names[0] != "John Smith" {
		t.Fatalf("fraudulent voters = %v, want [John Smith]", names)
	}
}
