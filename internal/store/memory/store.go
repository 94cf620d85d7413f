// Package memory is an in-process link store.
// It backs the tests and GOODNEWS_STORE=memory deployments without Redis.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
)

// Store keeps links in maps guarded by one RWMutex.
// Every method copies links in and out so callers never share state with it.
type Store struct {
	mu    sync.RWMutex
	links map[string]*domain.Link // ID -> Link
	byURL map[string]string       // normalized URL -> ID
	now   func() time.Time
}

// New creates an empty memory store.
func New() *Store {
	return &Store{
		links: make(map[string]*domain.Link),
		byURL: make(map[string]string),
		now:   time.Now,
	}
}

// Put inserts or replaces a link by ID.
func (s *Store) Put(_ context.Context, link *domain.Link) error {
	if link == nil || link.ID == "" {
		return fmt.Errorf("put link: %w", errs.ErrValidation)
	}
	l := link.Clone()
	l.URL = domain.NormalizeURL(l.URL)

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.byURL[l.URL]; ok && owner != l.ID {
		return fmt.Errorf("put link %s: %w", l.ID, errs.ErrDuplicateURL)
	}
	s.putLocked(l)
	return nil
}

// putLocked writes l and keeps the URL index in step. Caller holds mu.
func (s *Store) putLocked(l *domain.Link) {
	if old, ok := s.links[l.ID]; ok && old.URL != l.URL {
		delete(s.byURL, old.URL)
	}
	s.links[l.ID] = l
	s.byURL[l.URL] = l.ID
}

// Get retrieves a link by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("link %s: %w", id, errs.ErrNotFound)
	}
	return l.Clone(), nil
}

// GetByURL retrieves a link by normalized URL.
func (s *Store) GetByURL(_ context.Context, rawURL string) (*domain.Link, error) {
	u := domain.NormalizeURL(rawURL)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byURL[u]
	if !ok {
		return nil, fmt.Errorf("link %s: %w", u, errs.ErrNotFound)
	}
	return s.links[id].Clone(), nil
}

// GetAll returns all links.
func (s *Store) GetAll(_ context.Context) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l.Clone())
	}
	return out, nil
}

// Update merges patch into an existing link.
func (s *Store) Update(_ context.Context, id string, patch domain.LinkPatch) (*domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("update link %s: %w", id, errs.ErrNotFound)
	}

	next := cur.Clone()
	patch.Apply(next, s.now())
	if owner, ok := s.byURL[next.URL]; ok && owner != id {
		return nil, fmt.Errorf("update link %s: %w", id, errs.ErrDuplicateURL)
	}
	s.putLocked(next)
	return next.Clone(), nil
}

// Delete removes a link by ID.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.links[id]; ok {
		delete(s.byURL, l.URL)
		delete(s.links, id)
	}
	return nil
}

// ImportMany adds the links whose ID and URL are both unknown.
// The check and the insert happen under the same lock.
func (s *Store) ImportMany(_ context.Context, links []*domain.Link) (domain.ImportResult, error) {
	var res domain.ImportResult

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, link := range links {
		if link == nil || link.ID == "" {
			res.Skipped++
			continue
		}
		l := link.Clone()
		l.URL = domain.NormalizeURL(l.URL)
		if l.URL == "" {
			res.Skipped++
			continue
		}

		_, idTaken := s.links[l.ID]
		_, urlTaken := s.byURL[l.URL]
		if idTaken || urlTaken {
			res.Skipped++
			continue
		}
		s.putLocked(l)
		res.Added++
	}
	return res, nil
}

// Clear removes every link.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links = make(map[string]*domain.Link)
	s.byURL = make(map[string]string)
	return nil
}

// Count returns the number of stored links.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.links)
}
