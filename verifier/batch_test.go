package verifier

import (
	"context"
	"sync"
	"testing"
)

// countingProgress records lifecycle callbacks from the batch.
type countingProgress struct {
	mu         sync.Mutex
	total      int
	totalCalls int
	increments int
}

func (p *countingProgress) SetTotal(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = n
	p.totalCalls++
}

func (p *countingProgress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.increments++
}

func newTestBatch(t *testing.T, resolver Resolver, prober Prober, concurrency int) *Batch {
	t.Helper()
	cache := newTestCache(t, 0, 0)
	engine := NewEngine(cache, resolver, prober, NewDisposableSet(), testLogger())
	return NewBatch(engine, cache, resolver, concurrency, testLogger())
}

func TestBatchRunDeduplicatesAndCompletes(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(map[string][]string{
		"example.com": {"mx.example.com"},
	})
	prober := newFakeProber(map[string]ProbeStatus{
		"a@example.com": ProbeActive,
		"b@example.com": ProbeInactive,
	})
	batch := newTestBatch(t, resolver, prober, 4)

	addrs := []string{
		"a@example.com",
		"A@EXAMPLE.COM", // duplicate after normalization
		"b@example.com",
		"  ", // blank entries are dropped
		"not-an-email",
	}

	tracker := &countingProgress{}
	results, err := batch.Run(context.Background(), addrs, true, tracker)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (deduplicated)", len(results))
	}
	byEmail := make(map[string]Result, len(results))
	for _, res := range results {
		byEmail[res.Email] = res
	}
	if byEmail["a@example.com"].Verdict != VerdictGood {
		t.Errorf("a@example.com verdict = %q", byEmail["a@example.com"].Verdict)
	}
	if byEmail["b@example.com"].Verdict != VerdictBad {
		t.Errorf("b@example.com verdict = %q", byEmail["b@example.com"].Verdict)
	}
	if byEmail["not-an-email"].Verdict != VerdictBad {
		t.Errorf("not-an-email verdict = %q", byEmail["not-an-email"].Verdict)
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if tracker.totalCalls != 1 || tracker.total != 3 {
		t.Errorf("SetTotal called %d times with total %d, want once with 3", tracker.totalCalls, tracker.total)
	}
	if tracker.increments != 3 {
		t.Errorf("increments = %d, want exactly one per address", tracker.increments)
	}
}

func TestBatchRunWarmsMXCacheOnce(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(map[string][]string{
		"example.com": {"mx.example.com"},
	})
	batch := newTestBatch(t, resolver, newFakeProber(nil), 8)

	// Many addresses on the same domain: the domain resolves once through the
	// upfront bulk pass, not once per worker.
	addrs := []string{
		"u1@example.com", "u2@example.com", "u3@example.com",
		"u4@example.com", "u5@example.com",
	}
	results, err := batch.Run(context.Background(), addrs, false, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	if got := resolver.callCount("example.com"); got != 1 {
		t.Errorf("domain resolved %d times, want 1", got)
	}
}

func TestBatchRunEmptyInput(t *testing.T) {
	t.Parallel()

	batch := newTestBatch(t, newFakeResolver(nil), newFakeProber(nil), 4)

	tracker := &countingProgress{}
	results, err := batch.Run(context.Background(), []string{"", "   "}, false, tracker)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if tracker.total != 0 || tracker.totalCalls != 1 {
		t.Errorf("SetTotal: calls=%d total=%d, want one call with 0", tracker.totalCalls, tracker.total)
	}
}

func TestBatchRunCancelledContext(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(map[string][]string{
		"example.com": {"mx.example.com"},
	})
	batch := newTestBatch(t, resolver, newFakeProber(nil), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := batch.Run(ctx, []string{"a@example.com", "b@example.com"}, false, nil)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
