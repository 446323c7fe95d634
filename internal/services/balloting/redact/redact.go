// Package redact strips sensitive substrings from ballot comments before
// they reach persistence.
package redact

import (
	"regexp"
	"strings"
)

// Sentinel tokens substituted for each redacted category.
const (
	EmailSentinel      = "[REDACTED EMAIL]"
	PhoneSentinel      = "[REDACTED PHONE NUMBER]"
	NationalIDSentinel = "[REDACTED NATIONAL ID]"
	NameSentinel       = "[REDACTED NAME]"
)

var (
	emailPattern      = regexp.MustCompile(`\b\S+@\S+\.\S+\b`)
	phonePattern      = regexp.MustCompile(`\(?\d{3}(\) | |-)?\d{3}-?\d{4}`)
	nationalIDPattern = regexp.MustCompile(`\d{3}(-| )?\d{2}(-| )?\d+`)
)

// Comment redacts a ballot comment. Categories apply in order: email, phone
// number, national-id-shaped digits, then the voter's own first and last
// name as literal case-sensitive substrings. The names are quoted before
// matching, so metacharacters in a legal name ("O)Brien", "A.C.") can never
// break the pattern or inject one.
func Comment(text, firstName, lastName string) string {
	text = emailPattern.ReplaceAllString(text, EmailSentinel)
	text = phonePattern.ReplaceAllString(text, PhoneSentinel)
	text = nationalIDPattern.ReplaceAllString(text, NationalIDSentinel)
	text = redactLiteral(text, firstName)
	text = redactLiteral(text, lastName)
	return text
}

func redactLiteral(text, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return text
	}
	pattern := regexp.MustCompile(regexp.QuoteMeta(name))
	return pattern.ReplaceAllString(text, NameSentinel)
}
