package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civica/balloting/internal/services/balloting/domain"
	"github.com/civica/balloting/internal/services/balloting/storage"
)

// CreateCandidate inserts one candidate and returns it with its assigned id.
func (s *Store) CreateCandidate(ctx context.Context, name string) (domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Candidate{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Candidate{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Candidate{}, fmt.Errorf("candidate name is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO candidates (name, created_at) VALUES (?, ?)`,
		name,
		toMillis(time.Now()),
	)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("create candidate: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("create candidate: %w", err)
	}
	return domain.Candidate{ID: id, Name: name}, nil
}

// GetCandidate returns one candidate by id.
func (s *Store) GetCandidate(ctx context.Context, id int64) (domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Candidate{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Candidate{}, fmt.Errorf("storage is not configured")
	}

	var candidate domain.Candidate
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT candidate_id, name FROM candidates WHERE candidate_id = ?`,
		id,
	)
	if err := row.Scan(&candidate.ID, &candidate.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Candidate{}, storage.ErrNotFound
		}
		return domain.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return candidate, nil
}

// ListCandidates returns every registered candidate ordered by id.
func (s *Store) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT candidate_id, name FROM candidates ORDER BY candidate_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var candidate domain.Candidate
		if err := rows.Scan(&candidate.ID, &candidate.Name); err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}
