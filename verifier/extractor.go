package verifier

import (
	"regexp"
	"sort"
)

// addressPattern is the permissive grammar used to find address-shaped
// substrings in raw text: local part, @, domain with at least one dot and
// ASCII letters in the top-level label.
var addressPattern = regexp.MustCompile("[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,}")

// anchoredPattern is the same grammar fully anchored; an address must match
// it entirely to count as syntactically valid.
var anchoredPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,}$")

// ExtractAddresses scans raw text for candidate email addresses and returns
// them normalized, deduplicated and sorted. It never fails: text without any
// address-shaped substring yields an empty slice.
func ExtractAddresses(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range addressPattern.FindAllString(text, -1) {
		seen[Normalize(m)] = struct{}{}
	}

	addrs := make([]string, 0, len(seen))
	for a := range seen {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	return addrs
}
