// Package verifier implements the email verification pipeline: extraction,
// syntax and disposable-domain checks, cached MX resolution, the SMTP RCPT
// probe and the concurrent batch orchestrator.
package verifier

import (
	"strings"
	"time"
)

// Verdict classifications.
const (
	VerdictGood  = "good"
	VerdictRisky = "risky"
	VerdictBad   = "bad"
)

// Mailbox activity statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusUnknown  = "unknown"
)

// Reason codes carried on verdicts.
const (
	ReasonInvalidSyntax    = "invalid-syntax"
	ReasonDisposableDomain = "disposable-domain"
	ReasonNoMXRecord       = "no-mx-record"
	ReasonSMTPAccept       = "smtp-accept"
	ReasonSMTPReject       = "smtp-reject"
	ReasonSMTPUnknown      = "smtp-unknown"
	ReasonInconclusive     = "inconclusive"
)

// Result is the final classification for a single address.
type Result struct {
	Email        string   `json:"email"`
	Verdict      string   `json:"verdict"`
	ActiveStatus string   `json:"active_status"`
	Reasons      []string `json:"reasons"`
	WHOIS        string   `json:"whois,omitempty"`
}

// MXRecord is the ordered list of mail-exchanger hostnames for a domain.
// An empty Hosts slice means the domain cannot receive mail; that absence is
// a valid, cacheable outcome, not an error.
type MXRecord struct {
	Domain     string
	Hosts      []string
	ResolvedAt time.Time
}

// Empty reports whether the domain has no mail exchangers.
func (r MXRecord) Empty() bool {
	return len(r.Hosts) == 0
}

// Progress receives batch lifecycle updates. Total is set once as soon as the
// deduplicated address count is known; Increment fires exactly once per
// completed address.
type Progress interface {
	SetTotal(n int)
	Increment()
}

// Normalize lowercases and trims an address. Normalized addresses are the
// identity keys for verdicts.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
