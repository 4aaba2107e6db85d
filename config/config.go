package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mailsift/models"
	"mailsift/utils"
)

// RedisConfig enables a shared job tracker and rate-limit storage across
// service instances.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// Config carries every injectable knob: concurrency, timeouts, the probe
// identity and the cache paths. Nothing in the pipeline reads the environment
// directly.
type Config struct {
	Environment string `json:"environment" validate:"required"`
	ServerPort  string `json:"server_port" validate:"required"`

	CacheDBPath string `json:"cache_db_path" validate:"required"`
	UploadDir   string `json:"upload_dir" validate:"required"`
	OutputDir   string `json:"output_dir" validate:"required"`

	Workers     int           `json:"workers" validate:"min=1"`
	DNSTimeout  time.Duration `json:"dns_timeout"`
	SMTPTimeout time.Duration `json:"smtp_timeout"`
	SMTPPort    int           `json:"smtp_port" validate:"min=1,max=65535"`
	HELODomain  string        `json:"helo_domain" validate:"required"`
	MailFrom    string        `json:"mail_from" validate:"required,email"`

	// Optional extra disposable domains, one per line.
	DisposableFile string `json:"disposable_file"`

	// Zero means cached entries never go stale (historical behavior).
	MXTTL      time.Duration `json:"mx_ttl"`
	VerdictTTL time.Duration `json:"verdict_ttl"`

	RateLimitUpload int         `json:"rate_limit_upload" validate:"min=1"`
	Redis           RedisConfig `json:"redis"`
	SentryDSN       string      `json:"-"`
}

// Load reads configuration from the environment (and .env when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8000"),

		CacheDBPath: getEnv("CACHE_DB_PATH", "mailsift_cache.db"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		OutputDir:   getEnv("OUTPUT_DIR", "output"),

		Workers:     getEnvAsInt("WORKERS", 50),
		DNSTimeout:  getEnvAsDuration("DNS_TIMEOUT", 3*time.Second),
		SMTPTimeout: getEnvAsDuration("SMTP_TIMEOUT", 6*time.Second),
		SMTPPort:    getEnvAsInt("SMTP_PORT", 25),
		HELODomain:  getEnv("HELO_DOMAIN", "mailsift.local"),
		MailFrom:    getEnv("MAIL_FROM", "verify@mailsift.local"),

		DisposableFile: getEnv("DISPOSABLE_FILE", ""),

		MXTTL:      getEnvAsDuration("MX_TTL", 0),
		VerdictTTL: getEnvAsDuration("VERDICT_TTL", 0),

		RateLimitUpload: getEnvAsInt("RATE_LIMIT_UPLOAD", 10),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// OpenDB opens (or creates) the embedded cache store and migrates the cache
// tables. Callers own the handle's lifecycle, so tests can point it at a
// temporary file.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("cache store migration failed: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
