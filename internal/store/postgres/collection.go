package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/cloud"
	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/google/uuid"
)

// CollectionRepo implements cloud.Collection on the cloud_links table.
type CollectionRepo struct{ db *DB }

// NewCollectionRepo constructs a remote collection repository.
func NewCollectionRepo(db *DB) *CollectionRepo { return &CollectionRepo{db: db} }

var _ cloud.Collection = (*CollectionRepo)(nil)

// owner parses uid. An absent or foreign uid is refused the way an
// unauthenticated client would be.
func owner(uid string) (uuid.UUID, error) {
	id, err := uuid.Parse(uid)
	if err != nil {
		return uuid.Nil, fmt.Errorf("collection owner %q: %w", uid, errs.ErrPermissionDenied)
	}
	return id, nil
}

// Upsert writes link under the document id of its normalized URL.
func (r *CollectionRepo) Upsert(ctx context.Context, uid string, link *domain.Link) error {
	o, err := owner(uid)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO cloud_links (owner, doc_id, id, title, url, tags, notes, language, favorite, created_at, updated_at, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (owner, doc_id) DO UPDATE SET
    id = EXCLUDED.id, title = EXCLUDED.title, url = EXCLUDED.url, tags = EXCLUDED.tags,
    notes = EXCLUDED.notes, language = EXCLUDED.language, favorite = EXCLUDED.favorite,
    created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at, source = EXCLUDED.source`

	u := domain.NormalizeURL(link.URL)
	tags := link.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err = r.db.Pool.Exec(ctx, q, o, domain.DocID(u), link.ID, link.Title, u, tags, link.Notes,
		string(link.Language), link.Favorite, link.CreatedAt, link.UpdatedAt, string(link.Source))
	return mapErr("upsert cloud link", err)
}

// Delete removes the document for rawURL.
func (r *CollectionRepo) Delete(ctx context.Context, uid, rawURL string) error {
	o, err := owner(uid)
	if err != nil {
		return err
	}
	const q = `DELETE FROM cloud_links WHERE owner=$1 AND doc_id=$2`
	_, err = r.db.Pool.Exec(ctx, q, o, domain.DocID(rawURL))
	return mapErr("delete cloud link", err)
}

// List returns every document of uid.
func (r *CollectionRepo) List(ctx context.Context, uid string) ([]*domain.Link, error) {
	o, err := owner(uid)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, title, url, tags, notes, language, favorite, created_at, updated_at, source
FROM cloud_links WHERE owner=$1 ORDER BY doc_id`
	rows, err := r.db.Pool.Query(ctx, q, o)
	if err != nil {
		return nil, mapErr("list cloud links", err)
	}
	defer rows.Close()

	now := time.Now()
	var out []*domain.Link
	for rows.Next() {
		var (
			l        domain.Link
			language string
			source   string
		)
		if err := rows.Scan(&l.ID, &l.Title, &l.URL, &l.Tags, &l.Notes, &language,
			&l.Favorite, &l.CreatedAt, &l.UpdatedAt, &source); err != nil {
			return nil, mapErr("scan cloud link", err)
		}
		l.Language = domain.Language(language)
		l.Source = domain.Source(source)
		out = append(out, cloud.FillDefaults(&l, now))
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list cloud links", err)
	}
	return out, nil
}
