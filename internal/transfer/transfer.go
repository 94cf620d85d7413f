// Package transfer reads and writes the JSON and CSV link files used by
// import, export and backups.
package transfer

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/google/uuid"
)

// Format is a link file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// bom is the UTF-8 byte order mark written ahead of every export so that
// spreadsheet tools pick the right encoding.
var bom = []byte{0xEF, 0xBB, 0xBF}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("format %q: %w", s, errs.ErrUnsupportedFormat)
	}
}

// FormatFromFilename guesses the format from a file extension; anything
// that is not .json is read as CSV.
func FormatFromFilename(name string) Format {
	if strings.EqualFold(path.Ext(name), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// ContentType returns the MIME type of an export.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name of an export.
func (f Format) Filename() string {
	return "links." + string(f)
}

// Decode reads links from r. Every record comes back complete: missing ids,
// timestamps, language and source are filled, URLs are normalized and text
// is sanitized. Records keep their ids and timestamps when they have them.
func Decode(f Format, r io.Reader, now time.Time) ([]*domain.Link, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}
	data = bytes.TrimPrefix(data, bom)

	var links []*domain.Link
	switch f {
	case FormatJSON:
		links, err = decodeJSON(data)
	case FormatCSV:
		links, err = decodeCSV(data)
	default:
		return nil, fmt.Errorf("format %q: %w", f, errs.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	for _, l := range links {
		complete(l, now)
	}
	return links, nil
}

// Encode writes links to w, sorted by title, with a leading BOM. URLs are
// written in normalized https form; the caller's links are not modified.
func Encode(f Format, w io.Writer, links []*domain.Link) error {
	sorted := make([]*domain.Link, 0, len(links))
	for _, l := range links {
		if l == nil {
			continue
		}
		c := l.Clone()
		c.URL = domain.NormalizeURL(c.URL)
		sorted = append(sorted, c)
	}
	domain.SortByTitle(sorted)

	if _, err := w.Write(bom); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	switch f {
	case FormatJSON:
		return encodeJSON(w, sorted)
	case FormatCSV:
		return encodeCSV(w, sorted)
	default:
		return fmt.Errorf("format %q: %w", f, errs.ErrUnsupportedFormat)
	}
}

func complete(l *domain.Link, now time.Time) {
	l.Title = domain.SanitizeText(strings.TrimSpace(l.Title))
	l.Notes = domain.SanitizeText(strings.TrimSpace(l.Notes))
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
		l.UpdatedAt = l.CreatedAt
	}
	if l.Source == "" {
		l.Source = domain.SourceImport
	}
}
