// Package reconcile merges the local link store with the remote per-user
// collection, keyed by normalized URL.
//
// Records present on both sides are left alone: their fields are never
// compared, so an edit made on one side does not travel to the other.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/cloud"
	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/metrics"
)

// Result counts the links a sync moved.
type Result struct {
	Up   int `json:"up"`   // uploaded to the remote collection
	Down int `json:"down"` // handed to the local import
}

// Kind is the user-facing class of a sync failure.
type Kind int

const (
	KindGeneric Kind = iota
	KindPermissionDenied
)

// Classify maps a sync error to its Kind.
func Classify(err error) Kind {
	if errors.Is(err, errs.ErrPermissionDenied) {
		return KindPermissionDenied
	}
	return KindGeneric
}

// HintKey returns the i18n key of the message shown for a failed sync.
func (k Kind) HintKey() string {
	if k == KindPermissionDenied {
		return "sync_permission_hint"
	}
	return "sync_failed"
}

// Reconciler runs one sync at a time.
type Reconciler struct {
	mu     sync.Mutex
	local  links.Store
	remote cloud.Collection
	log    logger.Logger
}

// New creates a reconciler between local and remote.
func New(local links.Store, remote cloud.Collection, log logger.Logger) *Reconciler {
	return &Reconciler{local: local, remote: remote, log: log}
}

// Sync uploads local links missing remotely, then imports remote links
// missing locally. The first failure aborts the run; nothing is retried and
// work already done is kept.
func (r *Reconciler) Sync(ctx context.Context, uid string) (res Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordSync(res.Up, res.Down, time.Since(start), err)
	}()

	locals, err := r.local.GetAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("sync: read local links: %w", err)
	}
	localByURL := byURL(locals)

	remotes, err := r.remote.List(ctx, uid)
	if err != nil {
		return Result{}, fmt.Errorf("sync: list remote links: %w", err)
	}
	remoteByURL := byURL(remotes)

	for _, u := range sortedKeys(localByURL) {
		if _, ok := remoteByURL[u]; ok {
			continue
		}
		if err := r.remote.Upsert(ctx, uid, localByURL[u]); err != nil {
			return res, fmt.Errorf("sync: upload %s: %w", u, err)
		}
		res.Up++
	}

	var toImport []*domain.Link
	for _, u := range sortedKeys(remoteByURL) {
		if _, ok := localByURL[u]; !ok {
			toImport = append(toImport, remoteByURL[u])
		}
	}
	if len(toImport) > 0 {
		if _, err := r.local.ImportMany(ctx, toImport); err != nil {
			return res, fmt.Errorf("sync: import remote links: %w", err)
		}
	}
	res.Down = len(toImport)

	r.log.Info("sync finished",
		logger.String("uid", uid),
		logger.Int("up", res.Up),
		logger.Int("down", res.Down),
		logger.Duration("elapsed", time.Since(start)))
	return res, nil
}

func byURL(ls []*domain.Link) map[string]*domain.Link {
	m := make(map[string]*domain.Link, len(ls))
	for _, l := range ls {
		m[domain.NormalizeURL(l.URL)] = l
	}
	return m
}

func sortedKeys(m map[string]*domain.Link) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
