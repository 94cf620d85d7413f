package domain

import "time"

// Language is the content language of a saved link.
type Language string

const (
	LanguageEN Language = "en"
	LanguageTH Language = "th"
)

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == LanguageEN || l == LanguageTH
}

// ParseLanguage maps free input to a Language, defaulting to English.
func ParseLanguage(s string) Language {
	if l := Language(s); l.Valid() {
		return l
	}
	return LanguageEN
}

// Source records how a link entered the store.
type Source string

const (
	SourceManual      Source = "manual"
	SourceImport      Source = "import"
	SourceShareTarget Source = "share_target"
)

// Link is a saved bookmark.
//
// A Link is uniquely identified by ID inside a store, and no two links of the
// same store may share a normalized URL.
type Link struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated when the link is created and never changes.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title string   `json:"title"`
	URL   string   `json:"url"` // always normalized (https)
	Tags  []string `json:"tags"`
	Notes string   `json:"notes,omitempty"`

	Language Language `json:"language"`
	Favorite bool     `json:"favorite"`

	// ─────────────────────────────
	// Metadata (milliseconds since epoch)
	// ─────────────────────────────

	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Source    Source `json:"source"`
}

// Clone returns a deep copy of the link.
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	c := *l
	c.Tags = append([]string(nil), l.Tags...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c
}

// LinkPatch is a partial update. Nil fields are left untouched.
type LinkPatch struct {
	Title    *string   `json:"title,omitempty"`
	URL      *string   `json:"url,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Language *Language `json:"language,omitempty"`
	Favorite *bool     `json:"favorite,omitempty"`
}

// Apply merges the patch into l and stamps UpdatedAt with now.
func (p LinkPatch) Apply(l *Link, now time.Time) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.URL != nil {
		l.URL = NormalizeURL(*p.URL)
	}
	if p.Tags != nil {
		l.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	if p.Language != nil {
		l.Language = *p.Language
	}
	if p.Favorite != nil {
		l.Favorite = *p.Favorite
	}
	l.UpdatedAt = Millis(now)
}

// ImportResult counts the outcome of a bulk import.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Millis converts t to milliseconds since epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
