// Package cloud describes the per-user remote link collection the sync
// reconciler talks to.
package cloud

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/google/uuid"
)

// Collection is the remote per-user document collection. Documents are keyed
// by domain.DocID of the normalized URL, so one URL maps to one document.
type Collection interface {
	// Upsert writes link under its DocID, merging over any existing document.
	Upsert(ctx context.Context, uid string, link *domain.Link) error

	// Delete removes the document for rawURL. A missing document is not an error.
	Delete(ctx context.Context, uid, rawURL string) error

	// List returns every document of uid, completed by FillDefaults.
	List(ctx context.Context, uid string) ([]*domain.Link, error)
}

// FillDefaults completes a record read from the remote side: it normalizes
// the URL and fills a missing id, language, timestamps and source.
func FillDefaults(l *domain.Link, now time.Time) *domain.Link {
	l.URL = domain.NormalizeURL(l.URL)
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	if !l.Language.Valid() {
		l.Language = domain.LanguageEN
	}
	if l.CreatedAt == 0 {
		l.CreatedAt = domain.Millis(now)
	}
	if l.UpdatedAt == 0 {
		l.UpdatedAt = domain.Millis(now)
	}
	if l.Source == "" {
		l.Source = domain.SourceImport
	}
	return l
}
