package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mailsift/config"
	"mailsift/verifier"
)

// buildPipeline assembles the verification stack from configuration: cache,
// resolver, prober, engine and orchestrator, all sharing one logger.
func buildPipeline(cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) (*verifier.Engine, *verifier.Batch, error) {
	var extra []string
	if cfg.DisposableFile != "" {
		domains, err := verifier.LoadDisposableFile(cfg.DisposableFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load disposable domains: %w", err)
		}
		extra = domains
	}
	disposable := verifier.NewDisposableSet(extra...)

	cache := verifier.NewCache(db, cfg.MXTTL, cfg.VerdictTTL, log)
	resolver := verifier.NewMXResolver(cfg.DNSTimeout, log)
	prober := verifier.NewSMTPProber(cfg.SMTPPort, cfg.SMTPTimeout, cfg.HELODomain, cfg.MailFrom, log)

	engine := verifier.NewEngine(cache, resolver, prober, disposable, log)
	batch := verifier.NewBatch(engine, cache, resolver, cfg.Workers, log)
	return engine, batch, nil
}
