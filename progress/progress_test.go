package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on unknown id = %v, want ErrNotFound", err)
	}

	if err := store.Create(ctx, "job-1"); err != nil {
		t.Fatal(err)
	}
	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != StatusRunning || job.Done != 0 || job.Total != 0 {
		t.Errorf("fresh job = %+v", job)
	}

	if err := store.SetTotal(ctx, "job-1", 4); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := store.Increment(ctx, "job-1"); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Finish(ctx, "job-1"); err != nil {
		t.Fatal(err)
	}

	job, _ = store.Get(ctx, "job-1")
	if job.Done != 4 || job.Total != 4 || job.Status != StatusDone {
		t.Errorf("finished job = %+v", job)
	}
	if job.Percent() != 100 {
		t.Errorf("percent = %v, want 100", job.Percent())
	}
}

func TestMemoryStoreDoneNeverExceedsTotal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	store.Create(ctx, "job-1")
	store.SetTotal(ctx, "job-1", 2)
	for i := 0; i < 5; i++ {
		store.Increment(ctx, "job-1")
	}

	job, _ := store.Get(ctx, "job-1")
	if job.Done != 2 {
		t.Errorf("done = %d, want clamped at total 2", job.Done)
	}
}

func TestMemoryStoreFail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	store.Create(ctx, "job-1")
	if err := store.Fail(ctx, "job-1", "input not found"); err != nil {
		t.Fatal(err)
	}

	job, _ := store.Get(ctx, "job-1")
	if job.Status != StatusError || job.Error != "input not found" {
		t.Errorf("failed job = %+v", job)
	}
}

func TestMemoryStoreUnknownID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SetTotal(ctx, "nope", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTotal = %v", err)
	}
	if err := store.Increment(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Increment = %v", err)
	}
	if err := store.Finish(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish = %v", err)
	}
	if err := store.Fail(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fail = %v", err)
	}
}

func TestMemoryStoreConcurrentIncrements(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	store.Create(ctx, "job-1")
	store.SetTotal(ctx, "job-1", 100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Increment(ctx, "job-1")
		}()
	}
	wg.Wait()

	job, _ := store.Get(ctx, "job-1")
	if job.Done != 100 {
		t.Errorf("done = %d, want 100", job.Done)
	}
}

func TestJobPercent(t *testing.T) {
	t.Parallel()

	if got := (Job{Done: 0, Total: 0}).Percent(); got != 0 {
		t.Errorf("zero total percent = %v, want 0", got)
	}
	if got := (Job{Done: 1, Total: 4}).Percent(); got != 25 {
		t.Errorf("percent = %v, want 25", got)
	}
}
