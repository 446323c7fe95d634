package domain

// VoterStatus describes the lifecycle of a registered voter.
type VoterStatus int

// BallotStatus describes the persisted lifecycle of an issued ballot.
type BallotStatus int

// CountOutcome is the result of one counting attempt. Outcomes are business
// results, never errors, and VoterBallotMismatch is never persisted.
type CountOutcome int

const (
	// VoterStatusUnspecified represents an invalid voter status value.
	VoterStatusUnspecified VoterStatus = iota
	// VoterNotRegistered indicates no live registration exists.
	VoterNotRegistered
	// VoterRegisteredNotVoted indicates a registered voter with no counted ballot.
	VoterRegisteredNotVoted
	// VoterBallotCounted indicates exactly one ballot has been counted.
	VoterBallotCounted
	// VoterFraudCommitted indicates the voter attempted more than one count.
	// Fraud is permanent; this status never reverts.
	VoterFraudCommitted
)

const (
	// BallotStatusUnspecified represents an invalid ballot status value.
	BallotStatusUnspecified BallotStatus = iota
	// BallotIssued indicates a minted ballot that has not been processed.
	BallotIssued
	// BallotCounted indicates the ballot was counted. Terminal.
	BallotCounted
	// BallotFraudCommitted indicates the ballot was part of a fraudulent
	// counting attempt. Terminal, except for explicit invalidation.
	BallotFraudCommitted
	// BallotInvalid indicates the ballot was explicitly invalidated. Terminal.
	BallotInvalid
)

const (
	// OutcomeUnspecified represents an invalid counting outcome.
	OutcomeUnspecified CountOutcome = iota
	// OutcomeVoterNotRegistered rejects a count for an unknown voter.
	OutcomeVoterNotRegistered
	// OutcomeVoterBallotMismatch rejects a ballot the voter does not own.
	OutcomeVoterBallotMismatch
	// OutcomeInvalidBallot rejects an invalidated ballot.
	OutcomeInvalidBallot
	// OutcomeBallotCounted reports a successful count.
	OutcomeBallotCounted
	// OutcomeFraudCommitted reports a detected double-count.
	OutcomeFraudCommitted
)

func (s VoterStatus) String() string {
	switch s {
	case VoterNotRegistered:
		return "not registered"
	case VoterRegisteredNotVoted:
		return "registered, not voted"
	case VoterBallotCounted:
		return "ballot counted"
	case VoterFraudCommitted:
		return "fraud committed"
	default:
		return "unspecified"
	}
}

func (s BallotStatus) String() string {
	switch s {
	case BallotIssued:
		return "issued"
	case BallotCounted:
		return "counted"
	case BallotFraudCommitted:
		return "fraud committed"
	case BallotInvalid:
		return "invalid"
	default:
		return "unspecified"
	}
}

func (o CountOutcome) String() string {
	switch o {
	case OutcomeVoterNotRegistered:
		return "voter not registered"
	case OutcomeVoterBallotMismatch:
		return "voter/ballot mismatch"
	case OutcomeInvalidBallot:
		return "invalid ballot"
	case OutcomeBallotCounted:
		return "ballot counted"
	case OutcomeFraudCommitted:
		return "fraud committed"
	default:
		return "unspecified"
	}
}

// Terminal reports whether a ballot status accepts no further counting
// transitions. Invalidation has its own rule: see the service layer.
func (s BallotStatus) Terminal() bool {
	switch s {
	case BallotCounted, BallotFraudCommitted, BallotInvalid:
		return true
	default:
		return false
	}
}
