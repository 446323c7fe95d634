package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/civica/balloting/internal/services/balloting/domain"
)

// ErrNoBallotsCounted indicates a winner was requested before any ballot
// was counted.
var ErrNoBallotsCounted = errors.New("no ballots counted")

// ElectionWinner computes the candidate with the most counted ballots, even
// without a majority. Ties break to the lowest candidate id; the store's
// ordering guarantees the rule is deterministic.
func (s *Service) ElectionWinner(ctx context.Context) (domain.Candidate, error) {
	tallies, err := s.stores.Tally.CountedBallotsByCandidate(ctx)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("tally ballots: %w", err)
	}
	if len(tallies) == 0 {
		return domain.Candidate{}, ErrNoBallotsCounted
	}
	return tallies[0].Candidate, nil
}

// BallotComments returns every non-empty redacted comment from counted
// ballots. Comments were redacted at counting time; nothing here touches
// plaintext PII.
func (s *Service) BallotComments(ctx context.Context) ([]string, error) {
	comments, err := s.stores.Tally.CountedComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// FraudulentVoters returns "First Last" names of every voter who committed
// fraud. Names are stored encrypted, so this is one of the few read paths
// allowed to decrypt them.
func (s *Service) FraudulentVoters(ctx context.Context) ([]string, error) {
	voters, err := s.stores.Tally.FraudulentVoters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fraudulent voters: %w", err)
	}
	names := make([]string, 0, len(voters))
	for _, voter := range voters {
		firstName, err := s.cipher.DecryptName(ctx, voter.EncFirstName)
		if err != nil {
			return nil, fmt.Errorf("decrypt first name: %w", err)
		}
		lastName, err := s.cipher.DecryptName(ctx, voter.EncLastName)
		if err != nil {
			return nil, fmt.Errorf("decrypt last name: %w", err)
		}
		names = append(names, firstName+" "+lastName)
	}
	return names, nil
}
