package verifier

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Batch fans a list of addresses out across a bounded worker pool. Per-address
// failures are data (captured as verdicts), never fatal to the batch.
type Batch struct {
	engine      *Engine
	cache       *Cache
	resolver    Resolver
	concurrency int
	log         logrus.FieldLogger
}

func NewBatch(engine *Engine, cache *Cache, resolver Resolver, concurrency int, log logrus.FieldLogger) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batch{
		engine:      engine,
		cache:       cache,
		resolver:    resolver,
		concurrency: concurrency,
		log:         log,
	}
}

// Run deduplicates the input, resolves all uncached domains up front through
// the bulk barrier (so no worker blocks on a cold DNS call), then classifies
// each address across the pool. progress, when non-nil, sees the total once
// and exactly one increment per completed address. Verdicts complete in no
// particular order; the result set is keyed by address, not position.
//
// The only error Run returns is context cancellation; results gathered before
// the cancellation are returned alongside it.
func (b *Batch) Run(ctx context.Context, addrs []string, probe bool, progress Progress) ([]Result, error) {
	unique := dedupe(addrs)
	if progress != nil {
		progress.SetTotal(len(unique))
	}
	if len(unique) == 0 {
		return nil, nil
	}

	b.warmMXCache(ctx, unique)

	addrCh := make(chan string, len(unique))
	resCh := make(chan Result, len(unique))

	var wg sync.WaitGroup
	workers := b.concurrency
	if workers > len(unique) {
		workers = len(unique)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range addrCh {
				if ctx.Err() != nil {
					return
				}
				resCh <- b.engine.Classify(ctx, addr, probe)
			}
		}()
	}

	for _, addr := range unique {
		addrCh <- addr
	}
	close(addrCh)

	go func() {
		wg.Wait()
		close(resCh)
	}()

	results := make([]Result, 0, len(unique))
	for res := range resCh {
		if progress != nil {
			progress.Increment()
		}
		results = append(results, res)
	}

	if err := ctx.Err(); err != nil {
		b.log.WithError(err).Warn("batch cancelled")
		return results, err
	}
	return results, nil
}

// warmMXCache resolves every domain not already cached, writing the results
// (including negative ones) through the cache. This is a full barrier: no
// classification work starts until every domain's resolution is known.
func (b *Batch) warmMXCache(ctx context.Context, addrs []string) {
	var misses []string
	for _, addr := range addrs {
		domain, err := DomainOf(addr)
		if err != nil {
			continue // classified as invalid syntax later
		}
		if _, ok := b.cache.GetMX(domain); !ok {
			misses = append(misses, domain)
		}
	}
	if len(misses) == 0 {
		return
	}

	b.log.WithField("domains", len(misses)).Info("resolving mx records")
	for _, rec := range b.resolver.ResolveBulk(ctx, misses, b.concurrency) {
		b.cache.PutMX(rec)
	}
}

func dedupe(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	unique := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		addr = Normalize(addr)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		unique = append(unique, addr)
	}
	return unique
}
