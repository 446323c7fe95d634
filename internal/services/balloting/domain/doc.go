// Package domain defines voter, ballot, and candidate types for the
// balloting authority, plus the status machines that govern them.
package domain
