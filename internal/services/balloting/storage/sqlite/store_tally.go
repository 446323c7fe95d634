package sqlite

import (
	"context"
	"fmt"

	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/storage"
)

// CountedBallotsByCandidate returns per-candidate counted-ballot totals,
// ordered by votes descending then candidate id ascending. The secondary
// ordering is the tie-break rule: the lowest candidate id wins a tie.
func (s *Store) CountedBallotsByCandidate(ctx context.Context) ([]storage.CandidateTally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT c.candidate_id, c.name, COUNT(b.number) AS votes
		   FROM ballots b
		   JOIN candidates c ON c.candidate_id = b.candidate_id
		  WHERE b.status = ?
		  GROUP BY c.candidate_id, c.name
		  ORDER BY votes DESC, c.candidate_id ASC`,
		int64(domain.BallotCounted),
	)
	if err != nil {
		return nil, fmt.Errorf("count ballots by candidate: %w", err)
	}
	defer rows.Close()

	var tallies []storage.CandidateTally
	for rows.Next() {
		var tally storage.CandidateTally
		if err := rows.Scan(&tally.Candidate.ID, &tally.Candidate.Name, &tally.Votes); err != nil {
			return nil, fmt.Errorf("count ballots by candidate: %w", err)
		}
		tallies = append(tallies, tally)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count ballots by candidate: %w", err)
	}
	return tallies, nil
}

// CountedComments returns the non-empty redacted comments of counted ballots.
func (s *Store) CountedComments(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT comment FROM ballots WHERE status = ? AND comment != '' ORDER BY number ASC`,
		int64(domain.BallotCounted),
	)
	if err != nil {
		return nil, fmt.Errorf("list counted comments: %w", err)
	}
	defer rows.Close()

	var comments []string
	for rows.Next() {
		var comment string
		if err := rows.Scan(&comment); err != nil {
			return nil, fmt.Errorf("list counted comments: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list counted comments: %w", err)
	}
	return comments, nil
}

// FraudulentVoters returns every voter in FraudCommitted state, including
// soft-deleted records: fraud history survives de-registration attempts.
func (s *Store) FraudulentVoters(ctx context.Context) ([]domain.MinimalVoter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT national_id, enc_first_name, enc_last_name, masked_national_id, status, deleted
		   FROM voters
		  WHERE status = ?
		  ORDER BY national_id ASC`,
		int64(domain.VoterFraudCommitted),
	)
	if err != nil {
		return nil, fmt.Errorf("list fraudulent voters: %w", err)
	}
	defer rows.Close()

	var voters []domain.MinimalVoter
	for rows.Next() {
		var voter domain.MinimalVoter
		var status int64
		var deleted int64
		if err := rows.Scan(
			&voter.NationalID,
			&voter.EncFirstName,
			&voter.EncLastName,
			&voter.MaskedNationalID,
			&status,
			&deleted,
		); err != nil {
			return nil, fmt.Errorf("list fraudulent voters: %w", err)
		}
		voter.Status = domain.VoterStatus(status)
		voter.Deleted = deleted != 0
		voters = append(voters, voter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fraudulent voters: %w", err)
	}
	return voters, nil
}
