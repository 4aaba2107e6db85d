package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mailsift/config"
	"mailsift/controllers"
	"mailsift/progress"
	"mailsift/routes"
	"mailsift/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification job API",
	Long:  "Start the HTTP service: upload a file to begin verification, poll job progress, download the CSV results.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.WithError(err).Warn("sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := config.OpenDB(cfg.CacheDBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open cache store")
	}

	engine, batch, err := buildPipeline(cfg, db, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build verification pipeline")
	}

	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.WithError(err).Fatal("failed to create data directories")
		}
	}

	store := buildProgressStore(cfg, log)
	runner := worker.NewJobRunner(batch, store, log)
	jc := controllers.NewJobController(runner, engine, store, cfg.UploadDir, cfg.OutputDir, log)

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // uploads are plain text lists
	})
	routes.SetupRoutes(app, cfg, jc)

	go func() {
		log.WithField("port", cfg.ServerPort).Info("server starting")
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	log.Info("server stopped")
}

// buildProgressStore picks the shared redis tracker when configured so that
// progress survives across service instances; in-memory otherwise.
func buildProgressStore(cfg *config.Config, log logrus.FieldLogger) progress.Store {
	if !cfg.Redis.Enabled {
		return progress.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.WithField("address", cfg.Redis.Address).Info("using redis job tracker")
	return progress.NewRedisStore(client)
}
