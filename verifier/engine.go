package verifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Engine composes the classifier, caches, resolver and prober into the
// deterministic verdict state machine. Free and deep-check runs share the
// same pipeline; the probe flag is the only fork.
type Engine struct {
	cache      *Cache
	resolver   Resolver
	prober     Prober
	disposable *DisposableSet
	log        logrus.FieldLogger
}

func NewEngine(cache *Cache, resolver Resolver, prober Prober, disposable *DisposableSet, log logrus.FieldLogger) *Engine {
	return &Engine{
		cache:      cache,
		resolver:   resolver,
		prober:     prober,
		disposable: disposable,
		log:        log,
	}
}

// Classify evaluates an address in fixed order, short-circuiting on the first
// hard verdict: cache hit → syntax → disposable (reason only) → MX via
// cache-then-resolve → SMTP probe (when probe is true). Every terminal
// verdict is written back to the verdict cache before being returned.
func (e *Engine) Classify(ctx context.Context, email string, probe bool) Result {
	email = Normalize(email)

	// 1. Cached verdicts are authoritative.
	if res, ok := e.cache.GetVerdict(email); ok {
		return res
	}

	// 2. Syntax.
	if !IsSyntaxValid(email) {
		return e.finish(Result{
			Email:        email,
			Verdict:      VerdictBad,
			ActiveStatus: StatusInactive,
			Reasons:      []string{ReasonInvalidSyntax},
		})
	}

	domain, err := DomainOf(email)
	if err != nil {
		// Unreachable after the syntax check, but defended independently.
		return e.finish(Result{
			Email:        email,
			Verdict:      VerdictBad,
			ActiveStatus: StatusInactive,
			Reasons:      []string{ReasonInvalidSyntax},
		})
	}

	// 3. Disposable domains are recorded but not terminal by themselves.
	var reasons []string
	disposable := e.disposable.Contains(domain)
	if disposable {
		reasons = append(reasons, ReasonDisposableDomain)
	}

	// 4. MX lookup, cache then resolver. The disposable reason never
	// overrides an MX failure.
	rec, ok := e.cache.GetMX(domain)
	if !ok {
		rec = e.resolver.Resolve(ctx, domain)
		e.cache.PutMX(rec)
	}
	if rec.Empty() {
		return e.finish(Result{
			Email:        email,
			Verdict:      VerdictBad,
			ActiveStatus: StatusInactive,
			Reasons:      append(reasons, ReasonNoMXRecord),
		})
	}

	// 6. Without the deeper check, syntax+MX alone is inconclusive.
	if !probe {
		return e.finish(Result{
			Email:        email,
			Verdict:      VerdictRisky,
			ActiveStatus: StatusUnknown,
			Reasons:      append(reasons, ReasonInconclusive),
		})
	}

	// 5. Live mailbox probe against the preferred exchanger.
	switch e.prober.Probe(ctx, rec.Hosts[0], email) {
	case ProbeActive:
		verdict := VerdictGood
		if disposable {
			// A throwaway mailbox that accepts mail is still not good.
			verdict = VerdictRisky
		}
		return e.finish(Result{
			Email:        email,
			Verdict:      verdict,
			ActiveStatus: StatusActive,
			Reasons:      append(reasons, ReasonSMTPAccept),
		})
	case ProbeInactive:
		return e.finish(Result{
			Email:        email,
			Verdict:      VerdictBad,
			ActiveStatus: StatusInactive,
			Reasons:      append(reasons, ReasonSMTPReject),
		})
	default:
		return e.finish(Result{
			Email:        email,
			Verdict:      VerdictRisky,
			ActiveStatus: StatusUnknown,
			Reasons:      append(reasons, ReasonSMTPUnknown),
		})
	}
}

func (e *Engine) finish(res Result) Result {
	e.cache.PutVerdict(res)
	e.log.WithFields(logrus.Fields{
		"email":   res.Email,
		"verdict": res.Verdict,
		"reasons": res.Reasons,
	}).Debug("classified")
	return res
}
