package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mailsift/config"
	"mailsift/progress"
	"mailsift/worker"
)

var (
	verifyInput   string
	verifyOutput  string
	verifyWorkers int
	verifyDeep    bool
	verifyDBPath  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify addresses from a file or directory",
	Long:  "Extracts email addresses from the input file or directory, verifies them, and writes CSV results to the output directory.",
	Run:   runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "input file or directory")
	verifyCmd.Flags().StringVarP(&verifyOutput, "output", "o", "", "output directory")
	verifyCmd.Flags().IntVarP(&verifyWorkers, "workers", "w", 0, "concurrent network sessions (default from config)")
	verifyCmd.Flags().BoolVar(&verifyDeep, "deep", false, "enable the live SMTP mailbox probe")
	verifyCmd.Flags().StringVar(&verifyDBPath, "db", "", "cache database path (default from config)")
	_ = verifyCmd.MarkFlagRequired("input")
	_ = verifyCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if verifyWorkers > 0 {
		cfg.Workers = verifyWorkers
	}
	if verifyDBPath != "" {
		cfg.CacheDBPath = verifyDBPath
	}

	db, err := config.OpenDB(cfg.CacheDBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open cache store")
	}

	_, batch, err := buildPipeline(cfg, db, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build verification pipeline")
	}

	if err := os.MkdirAll(verifyOutput, 0o755); err != nil {
		log.WithError(err).Fatal("failed to create output directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	const jobID = "cli"
	store := progress.NewMemoryStore()
	_ = store.Create(ctx, jobID)

	// Poll the tracker for console progress, the same numbers the service
	// mode exposes over HTTP.
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job, err := store.Get(ctx, jobID)
				if err != nil || job.Status != progress.StatusRunning {
					return
				}
				if job.Total > 0 {
					log.Infof("verified %d/%d (%.1f%%)", job.Done, job.Total, job.Percent())
				}
			}
		}
	}()

	runner := worker.NewJobRunner(batch, store, log)
	runner.Run(ctx, jobID, verifyInput, verifyOutput, verifyDeep)
	stop()
	<-pollDone

	job, err := store.Get(context.Background(), jobID)
	if err != nil {
		log.WithError(err).Fatal("failed to read final job state")
	}
	if job.Status == progress.StatusError {
		log.Fatalf("verification failed: %s", job.Error)
	}
	log.Infof("done: %d addresses verified, results in %s", job.Done, verifyOutput)
}
