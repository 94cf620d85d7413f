package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/events"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/store/memory"
)

const seedYAML = `links:
  - title: Khaosod English
    url: khaosodenglish.com
  - title: Thai PBS
    url: https://www.thaipbs.or.th
    language: th
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

func TestSeedReloader_Reload(t *testing.T) {
	log := logger.New("error", false)
	store := memory.New()
	svc := links.NewService(store, events.NewBus(8), log)

	sr := NewSeedReloader(writeSeed(t, seedYAML), svc, log, 0, nil)

	res, err := sr.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if res.Added != 2 || res.Skipped != 0 {
		t.Errorf("first reload = %+v, want 2 added", res)
	}

	// Reloading the same file adds nothing.
	res, err = sr.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if res.Added != 0 || res.Skipped != 2 {
		t.Errorf("second reload = %+v, want 2 skipped", res)
	}

	if store.Count() != 2 {
		t.Errorf("store has %d links, want 2", store.Count())
	}
}

func TestSeedReloader_StartFailsWithoutFile(t *testing.T) {
	log := logger.New("error", false)
	imp := &countingImporter{calls: make(chan []*domain.Link, 1)}
	sr := NewSeedReloader("/nonexistent/links.yaml", imp, log, 0, nil)
	if err := sr.Start(context.Background()); err == nil {
		t.Error("Start with a missing seed file should return error")
	}
}

// countingImporter signals every import on calls.
type countingImporter struct {
	calls chan []*domain.Link
}

func (c *countingImporter) ImportLinks(_ context.Context, l []*domain.Link) (domain.ImportResult, error) {
	c.calls <- l
	return domain.ImportResult{Added: len(l)}, nil
}

func TestSeedReloader_ManualTrigger(t *testing.T) {
	log := logger.New("error", false)
	imp := &countingImporter{calls: make(chan []*domain.Link, 4)}
	trigger := make(chan struct{}, 1)

	sr := NewSeedReloader(writeSeed(t, seedYAML), imp, log, time.Hour, trigger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sr.Stop()
	<-imp.calls // initial load

	trigger <- struct{}{}
	select {
	case got := <-imp.calls:
		if len(got) != 2 {
			t.Errorf("manual reload imported %d links, want 2", len(got))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("manual trigger did not reload")
	}

	sr.Stop() // safe to call twice
}

type fakeRunner struct {
	runs atomic.Int32
	done chan struct{}
	err  error
}

func (f *fakeRunner) Run(context.Context) (string, error) {
	f.runs.Add(1)
	select {
	case f.done <- struct{}{}:
	default:
	}
	return "key", f.err
}

func TestBackupScheduler_ManualTrigger(t *testing.T) {
	log := logger.New("error", false)
	runner := &fakeRunner{done: make(chan struct{}, 4), err: errors.New("s3 down")}
	trigger := make(chan struct{}, 1)

	bs := NewBackupScheduler(runner, log, time.Hour, trigger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bs.Start(ctx)
	defer bs.Stop()

	trigger <- struct{}{}
	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("manual trigger did not run a backup")
	}

	// A failed run keeps the scheduler alive.
	trigger <- struct{}{}
	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler stopped after a failed backup")
	}
	if n := runner.runs.Load(); n != 2 {
		t.Errorf("runs = %d, want 2", n)
	}
}

func TestBackupScheduler_Interval(t *testing.T) {
	log := logger.New("error", false)
	runner := &fakeRunner{done: make(chan struct{}, 16)}

	bs := NewBackupScheduler(runner, log, 10*time.Millisecond, nil)
	bs.Start(context.Background())
	defer bs.Stop()

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not run a backup")
	}
}
