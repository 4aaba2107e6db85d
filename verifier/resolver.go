package verifier

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Resolver answers MX queries. Resolution failures are absorbed as empty
// records, never surfaced as errors.
type Resolver interface {
	Resolve(ctx context.Context, domain string) MXRecord
	ResolveBulk(ctx context.Context, domains []string, limit int) map[string]MXRecord
}

// MXResolver resolves mail exchangers through the system resolver with a
// bounded per-query timeout.
type MXResolver struct {
	timeout time.Duration
	log     logrus.FieldLogger

	// lookup is swapped out in tests.
	lookup func(ctx context.Context, domain string) ([]*net.MX, error)
}

func NewMXResolver(timeout time.Duration, log logrus.FieldLogger) *MXResolver {
	r := &net.Resolver{}
	return &MXResolver{
		timeout: timeout,
		log:     log,
		lookup:  r.LookupMX,
	}
}

// Resolve issues a single MX query. NXDOMAIN, timeouts and empty answers all
// produce an explicit empty record: absence of mail exchangers is a valid,
// cacheable outcome.
func (r *MXResolver) Resolve(ctx context.Context, domain string) MXRecord {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec := MXRecord{Domain: domain, ResolvedAt: time.Now()}
	mxs, err := r.lookup(ctx, domain)
	if err != nil {
		r.log.WithField("domain", domain).WithError(err).Debug("mx resolution failed")
		return rec
	}
	for _, mx := range mxs {
		host := strings.TrimSuffix(mx.Host, ".")
		if host != "" {
			rec.Hosts = append(rec.Hosts, host)
		}
	}
	return rec
}

// ResolveBulk resolves each unique domain at most once across a bounded
// worker pool and waits for all queries to complete before returning. It is
// a fan-out/fan-in barrier, not a streaming interface.
func (r *MXResolver) ResolveBulk(ctx context.Context, domains []string, limit int) map[string]MXRecord {
	unique := make([]string, 0, len(domains))
	seen := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}

	if limit < 1 {
		limit = 1
	}
	if limit > len(unique) {
		limit = len(unique)
	}

	results := make(map[string]MXRecord, len(unique))
	var mu sync.Mutex
	var wg sync.WaitGroup

	domainCh := make(chan string, len(unique))
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range domainCh {
				rec := r.Resolve(ctx, d)
				mu.Lock()
				results[d] = rec
				mu.Unlock()
			}
		}()
	}

	for _, d := range unique {
		domainCh <- d
	}
	close(domainCh)
	wg.Wait()

	return results
}
