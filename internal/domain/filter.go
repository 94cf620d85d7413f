package domain

import (
	"slices"
	"sort"
	"strings"
)

// LanguageAll disables the language filter.
const LanguageAll = "all"

// Filter narrows a list of links the way the home view does.
type Filter struct {
	Query         string // case-insensitive substring over title, url, tags, notes and host
	Language      string // "all", "en" or "th"
	FavoritesOnly bool
	Tag           string // exact tag match
}

// Match reports whether l passes every active criterion.
func (f Filter) Match(l *Link) bool {
	if f.Language != "" && f.Language != LanguageAll && string(l.Language) != f.Language {
		return false
	}
	if f.FavoritesOnly && !l.Favorite {
		return false
	}
	if f.Tag != "" && !slices.Contains(l.Tags, f.Tag) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		l.Title,
		l.URL,
		strings.Join(l.Tags, ","),
		l.Notes,
		HostFromURL(l.URL),
	}, " "))
	return strings.Contains(haystack, q)
}

// Apply returns the matching links sorted by title.
func (f Filter) Apply(links []*Link) []*Link {
	out := make([]*Link, 0, len(links))
	for _, l := range links {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	SortByTitle(out)
	return out
}

// SortByTitle orders links by title, then by id for a stable listing.
func SortByTitle(links []*Link) {
	sort.SliceStable(links, func(i, j int) bool {
		ti, tj := strings.ToLower(links[i].Title), strings.ToLower(links[j].Title)
		if ti != tj {
			return ti < tj
		}
		return links[i].ID < links[j].ID
	})
}
