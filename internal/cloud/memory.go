package cloud

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
)

// Memory is an in-process Collection.
// Deny makes every call fail with errs.ErrPermissionDenied.
type Memory struct {
	mu   sync.Mutex
	docs map[string]map[string]*domain.Link // uid -> doc id -> link
	Deny bool
}

// NewMemory creates an empty collection.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]*domain.Link)}
}

func (m *Memory) check(uid string) error {
	if m.Deny || uid == "" {
		return fmt.Errorf("collection %q: %w", uid, errs.ErrPermissionDenied)
	}
	return nil
}

// Upsert stores link under its document id.
func (m *Memory) Upsert(_ context.Context, uid string, link *domain.Link) error {
	if err := m.check(uid); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.docs[uid]
	if !ok {
		docs = make(map[string]*domain.Link)
		m.docs[uid] = docs
	}
	l := link.Clone()
	l.URL = domain.NormalizeURL(l.URL)
	docs[domain.DocID(l.URL)] = l
	return nil
}

// Delete removes the document for rawURL.
func (m *Memory) Delete(_ context.Context, uid, rawURL string) error {
	if err := m.check(uid); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs[uid], domain.DocID(rawURL))
	return nil
}

// List returns the documents of uid ordered by document id.
func (m *Memory) List(_ context.Context, uid string) ([]*domain.Link, error) {
	if err := m.check(uid); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.docs[uid]))
	for id := range m.docs[uid] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := time.Now()
	out := make([]*domain.Link, 0, len(ids))
	for _, id := range ids {
		out = append(out, FillDefaults(m.docs[uid][id].Clone(), now))
	}
	return out, nil
}
