package transfer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
)

// csvHeader is the column order of CSV files. Tags are joined with tagSep.
var csvHeader = []string{"title", "url", "tags", "notes", "language", "favorite"}

const tagSep = "|"

func decodeCSV(data []byte) ([]*domain.Link, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w: %v", errs.ErrValidation, err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), csvHeader[0]) {
		records = records[1:]
	}

	links := make([]*domain.Link, 0, len(records))
	for _, rec := range records {
		field := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if field(0) == "" && field(1) == "" {
			continue
		}
		fav, _ := strconv.ParseBool(field(5))
		links = append(links, &domain.Link{
			Title:    field(0),
			URL:      field(1),
			Tags:     splitTags(field(2)),
			Notes:    field(3),
			Language: domain.Language(strings.ToLower(field(4))),
			Favorite: fav,
			Source:   domain.SourceImport,
		})
	}
	return links, nil
}

func encodeCSV(w io.Writer, links []*domain.Link) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	for _, l := range links {
		row := []string{
			l.Title,
			l.URL,
			strings.Join(l.Tags, tagSep),
			l.Notes,
			string(l.Language),
			strconv.FormatBool(l.Favorite),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, tagSep) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
