// Package links holds the local link store contract and the service that
// implements the user-facing link operations on top of it.
package links

import (
	"context"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
)

// Store is the local key-value store of saved links.
//
// Implementations must keep normalized URLs unique: Put and ImportMany never
// leave two records with the same URL behind.
type Store interface {
	// Put inserts or replaces a link by ID.
	// It fails with errs.ErrDuplicateURL when another ID owns the URL.
	Put(ctx context.Context, link *domain.Link) error

	// Get returns the link with the given ID or errs.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Link, error)

	// GetByURL looks a link up by normalized URL or returns errs.ErrNotFound.
	GetByURL(ctx context.Context, rawURL string) (*domain.Link, error)

	// GetAll returns every stored link in no particular order.
	GetAll(ctx context.Context) ([]*domain.Link, error)

	// Update merges patch into the stored link and stamps UpdatedAt.
	// A missing ID yields errs.ErrNotFound and changes nothing.
	Update(ctx context.Context, id string, patch domain.LinkPatch) (*domain.Link, error)

	// Delete removes a link. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// ImportMany inserts each link whose ID and normalized URL are both new.
	// Every other record, including ones that fail to write, counts as skipped.
	ImportMany(ctx context.Context, links []*domain.Link) (domain.ImportResult, error)

	// Clear wipes the store.
	Clear(ctx context.Context) error
}
