package domain

import "strings"

const maskInterior = "*******"

// Voter carries the sensitive registration request for one voter. It should
// only live at the edge of the system; persistence and the rest of the
// codebase work with MinimalVoter.
type Voter struct {
	NationalID string
	FirstName  string
	LastName   string
}

// MinimalVoter is the privacy-minimized persisted form of a voter: names are
// encrypted envelopes and the national id is irreversibly masked. The
// normalized national id itself is kept only as the storage dedup key.
type MinimalVoter struct {
	NationalID       string
	EncFirstName     string
	EncLastName      string
	MaskedNationalID string
	Status           VoterStatus
	Deleted          bool
}

// Candidate is an election candidate. Candidates carry no status.
type Candidate struct {
	ID   int64
	Name string
}

// Ballot is one counting request: the opaque number plus the voter's choice
// and free-text comment.
type Ballot struct {
	Number      string
	CandidateID int64
	Comment     string
}

// NormalizeNationalID strips separator characters from a national id so that
// "555-55-5555", "555 55 5555", and "555555555" compare and store equal.
// Every lookup, comparison, and storage key use takes the normalized form.
func NormalizeNationalID(nationalID string) string {
	var b strings.Builder
	b.Grow(len(nationalID))
	for _, r := range strings.TrimSpace(nationalID) {
		switch r {
		case '-', ' ', '.', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskNationalID keeps the first and last character of a normalized national
// id and replaces the interior with a fixed-width mask. The result is
// irreversible and fit only for display, never for equality checks.
func MaskNationalID(nationalID string) string {
	normalized := NormalizeNationalID(nationalID)
	if len(normalized) < 2 {
		return maskInterior
	}
	return normalized[:1] + maskInterior + normalized[len(normalized)-1:]
}
