package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
)

// Mapper converts seed entries to links.
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new seed mapper
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MapLinks converts f to links. Entries without a usable URL are skipped;
// an empty result is an error.
func (m *Mapper) MapLinks(f File) ([]*domain.Link, error) {
	links := make([]*domain.Link, 0, len(f.Links))
	ts := domain.Millis(m.now())

	for _, e := range f.Links {
		if !domain.IsValidHTTPSURL(e.URL) {
			continue
		}
		u := domain.NormalizeURL(e.URL)

		title := domain.SanitizeText(strings.TrimSpace(e.Title))
		if title == "" {
			title = u
		}
		tags := make([]string, 0, len(e.Tags))
		for _, t := range e.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}

		links = append(links, &domain.Link{
			ID:        linkID(u),
			Title:     title,
			URL:       u,
			Tags:      tags,
			Notes:     domain.SanitizeText(strings.TrimSpace(e.Notes)),
			Language:  domain.ParseLanguage(e.Language),
			Favorite:  e.Favorite,
			CreatedAt: ts,
			UpdatedAt: ts,
			Source:    domain.SourceImport,
		})
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("no valid links found in seed file")
	}
	return links, nil
}

// linkID derives a stable ID from the normalized URL, so reloading the
// same seed never creates a second record.
func linkID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "seed-" + hex.EncodeToString(hash[:])[:16]
}
