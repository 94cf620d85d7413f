package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/sources/seed"
)

// Importer adds decoded links to the store, skipping known ones.
type Importer interface {
	ImportLinks(ctx context.Context, links []*domain.Link) (domain.ImportResult, error)
}

// SeedReloader imports the seed file on start, periodically and on demand.
// Seed links have stable IDs, so a reload only adds what is new.
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	importer      Importer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger <-chan struct{}
}

// NewSeedReloader creates a new seed reloader. interval <= 0 disables the
// periodic reload; manualTrigger may be nil.
func NewSeedReloader(
	seedFile string,
	importer Importer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		importer:      importer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the seed once, then keeps reloading in the background.
func (sr *SeedReloader) Start(ctx context.Context) error {
	if _, err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed reload failed: %w", err)
	}

	go func() {
		var tick <-chan time.Time
		if sr.interval > 0 {
			ticker := time.NewTicker(sr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				sr.reloadAndLog(ctx)
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				sr.reloadAndLog(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SeedReloader) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

// Reload reads the seed file and imports its links.
func (sr *SeedReloader) Reload(ctx context.Context) (domain.ImportResult, error) {
	sr.logger.Info("reloading seed file", logger.String("path", sr.loader.Path()))

	f, err := sr.loader.Load()
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("failed to load seed: %w", err)
	}

	links, err := sr.mapper.MapLinks(f)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("failed to map seed: %w", err)
	}

	res, err := sr.importer.ImportLinks(ctx, links)
	if err != nil {
		return res, fmt.Errorf("failed to import seed: %w", err)
	}

	sr.logger.Info("seed reloaded",
		logger.Int("count", len(links)),
		logger.Int("added", res.Added),
		logger.Int("skipped", res.Skipped))
	return res, nil
}

func (sr *SeedReloader) reloadAndLog(ctx context.Context) {
	if _, err := sr.Reload(ctx); err != nil {
		sr.logger.Error("failed to reload seed", logger.Error(err))
	}
}
