package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/logger"
)

// BackupRunner takes one snapshot and returns where it was stored.
type BackupRunner interface {
	Run(ctx context.Context) (string, error)
}

// BackupScheduler runs backups periodically and on demand.
type BackupScheduler struct {
	runner        BackupRunner
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger <-chan struct{}
}

// NewBackupScheduler creates a new backup scheduler. manualTrigger may be nil.
func NewBackupScheduler(
	runner BackupRunner,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *BackupScheduler {
	return &BackupScheduler{
		runner:        runner,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic backup process. No backup is taken at startup.
func (bs *BackupScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(bs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bs.runOnce(ctx)
			case <-bs.manualTrigger:
				bs.logger.Info("manual backup triggered")
				bs.runOnce(ctx)
			case <-bs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (bs *BackupScheduler) Stop() {
	bs.stopOnce.Do(func() { close(bs.stopCh) })
}

func (bs *BackupScheduler) runOnce(ctx context.Context) {
	if _, err := bs.runner.Run(ctx); err != nil {
		bs.logger.Error("backup failed", logger.Error(err))
	}
}
