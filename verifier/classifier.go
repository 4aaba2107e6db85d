package verifier

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/badoux/checkmail"
	"golang.org/x/net/publicsuffix"
)

// ErrMalformedAddress is returned by DomainOf for input without an @ sign.
// Extraction guarantees this cannot occur downstream of it, but the classifier
// defends independently since it may be called with externally-supplied input.
var ErrMalformedAddress = errors.New("malformed email address")

// IsSyntaxValid reports whether the address fully matches the extraction
// grammar and passes checkmail's format validation.
func IsSyntaxValid(email string) bool {
	if !anchoredPattern.MatchString(email) {
		return false
	}
	return checkmail.ValidateFormat(email) == nil
}

// DomainOf returns the lowercased domain part of an address.
func DomainOf(email string) (string, error) {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return "", ErrMalformedAddress
	}
	return strings.ToLower(domain), nil
}

// DisposableSet is a lookup table of domains known to provide throwaway
// mailboxes. Lookups key on the registrable domain, so sub.mailinator.com
// matches mailinator.com.
type DisposableSet struct {
	domains map[string]struct{}
}

// NewDisposableSet builds a set from the built-in list plus any extra domains.
func NewDisposableSet(extra ...string) *DisposableSet {
	s := &DisposableSet{domains: make(map[string]struct{})}
	for _, d := range strings.Split(disposableDomainList, "\n") {
		s.add(d)
	}
	for _, d := range extra {
		s.add(d)
	}
	return s
}

func (s *DisposableSet) add(domain string) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain != "" {
		s.domains[domain] = struct{}{}
	}
}

// Contains reports whether the domain (or its registrable base) is disposable.
func (s *DisposableSet) Contains(domain string) bool {
	domain = strings.ToLower(domain)
	if _, ok := s.domains[domain]; ok {
		return true
	}
	base, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return false
	}
	_, ok := s.domains[base]
	return ok
}

// LoadDisposableFile reads one domain per line, skipping blanks and comments.
func LoadDisposableFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	return domains, scanner.Err()
}

const disposableDomainList = `
mailinator.com
mailinator.net
mailinator.org
10minutemail.com
20minutemail.com
30minutemail.com
60minutemail.com
yopmail.com
yopmail.fr
yopmail.net
guerrillamail.com
guerrillamail.net
guerrillamail.org
guerrillamail.biz
guerrillamailblock.com
trashmail.com
trashmail.net
trashmail.de
trashmail.me
trash-mail.com
tempmail.com
tempmail.net
temp-mail.org
temp-mail.io
tempmailaddress.com
tempinbox.com
temporaryinbox.com
getnada.com
dispostable.com
discard.email
discardmail.com
maildrop.cc
mailnesia.com
mailcatch.com
mailmetrash.com
fakeinbox.com
throwawaymail.com
throwawayemailaddress.com
spamgourmet.com
spam4.me
spamhole.com
spambox.us
sharklasers.com
mintemail.com
mytemp.email
mailsac.com
harakirimail.com
jetable.org
wegwerfemail.de
kurzepost.de
deadaddress.com
devnullmail.com
dodgit.com
dumpyemail.com
emailsensei.com
explodemail.com
mailexpire.com
meltmail.com
neverbox.com
nospammail.net
oneoffemail.com
pookmail.com
quickinbox.com
rejectmail.com
selfdestructingmail.com
sneakemail.com
sogetthis.com
spamavert.com
spamfree24.org
tempemail.net
tempomail.fr
trashymail.com
willselfdestruct.com
zippymail.info
`
