package worker

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mailsift/models"
	"mailsift/progress"
	"mailsift/verifier"
)

type staticResolver struct {
	records map[string][]string
}

func (r *staticResolver) Resolve(_ context.Context, domain string) verifier.MXRecord {
	return verifier.MXRecord{Domain: domain, Hosts: r.records[domain], ResolvedAt: time.Now()}
}

func (r *staticResolver) ResolveBulk(ctx context.Context, domains []string, _ int) map[string]verifier.MXRecord {
	out := make(map[string]verifier.MXRecord, len(domains))
	for _, d := range domains {
		out[d] = r.Resolve(ctx, d)
	}
	return out
}

type staticProber struct {
	status verifier.ProbeStatus
}

func (p *staticProber) Probe(context.Context, string, string) verifier.ProbeStatus {
	return p.status
}

func newTestRunner(t *testing.T, store progress.Store) *JobRunner {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cache.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	cache := verifier.NewCache(db, 0, 0, log)
	resolver := &staticResolver{records: map[string][]string{
		"example.com": {"mx.example.com"},
	}}
	prober := &staticProber{status: verifier.ProbeActive}
	engine := verifier.NewEngine(cache, resolver, prober, verifier.NewDisposableSet(), log)
	batch := verifier.NewBatch(engine, cache, resolver, 4, log)
	return NewJobRunner(batch, store, log)
}

func TestJobRunnerCompletesAndWritesCSVs(t *testing.T) {
	t.Parallel()

	inputDir := t.TempDir()
	outputDir := t.TempDir()
	input := "reach a@example.com and b@mailinator.com or a@example.com again"
	if err := os.WriteFile(filepath.Join(inputDir, "leads.txt"), []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	store := progress.NewMemoryStore()
	store.Create(context.Background(), "job-1")

	runner := newTestRunner(t, store)
	runner.Run(context.Background(), "job-1", inputDir, outputDir, true)

	job, err := store.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != progress.StatusDone {
		t.Fatalf("job status = %q (%s), want done", job.Status, job.Error)
	}
	if job.Total != 2 || job.Done != 2 {
		t.Errorf("progress = %d/%d, want 2/2 after dedup", job.Done, job.Total)
	}

	f, err := os.Open(filepath.Join(outputDir, "verified_results.csv"))
	if err != nil {
		t.Fatalf("combined results missing: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 { // header + 2 addresses
		t.Fatalf("got %d rows, want 3: %v", len(rows), rows)
	}

	verdicts := map[string]string{}
	for _, row := range rows[1:] {
		verdicts[row[0]] = row[1]
	}
	if verdicts["a@example.com"] != verifier.VerdictGood {
		t.Errorf("a@example.com = %q, want good", verdicts["a@example.com"])
	}
	// Disposable domain without MX records resolves to bad, not risky.
	if verdicts["b@mailinator.com"] != verifier.VerdictBad {
		t.Errorf("b@mailinator.com = %q, want bad", verdicts["b@mailinator.com"])
	}

	if _, err := os.Stat(filepath.Join(outputDir, "leads.txt.emails.csv")); err != nil {
		t.Errorf("per-file results missing: %v", err)
	}
}

func TestJobRunnerMissingInput(t *testing.T) {
	t.Parallel()

	store := progress.NewMemoryStore()
	store.Create(context.Background(), "job-1")

	runner := newTestRunner(t, store)
	runner.Run(context.Background(), "job-1", filepath.Join(t.TempDir(), "nope"), t.TempDir(), false)

	job, err := store.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != progress.StatusError {
		t.Fatalf("job status = %q, want error", job.Status)
	}
	if job.Error == "" {
		t.Error("expected an error message on the job")
	}
}

func TestJobRunnerInputWithoutAddresses(t *testing.T) {
	t.Parallel()

	inputDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inputDir, "empty.txt"), []byte("no addresses here"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := progress.NewMemoryStore()
	store.Create(context.Background(), "job-1")

	runner := newTestRunner(t, store)
	runner.Run(context.Background(), "job-1", inputDir, t.TempDir(), false)

	job, _ := store.Get(context.Background(), "job-1")
	if job.Status != progress.StatusError {
		t.Errorf("job status = %q, want error when nothing was extracted", job.Status)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	if got := userMessage(context.Canceled); got != "verification was cancelled before completing" {
		t.Errorf("cancelled message = %q", got)
	}
	if got := userMessage(os.ErrPermission); got != "verification failed unexpectedly" {
		t.Errorf("generic message = %q", got)
	}
}
