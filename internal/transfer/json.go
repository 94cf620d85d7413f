package transfer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/tidwall/jsonc"
)

// decodeJSON accepts a JSON array of links. Comments and trailing commas
// are tolerated so hand-edited files import cleanly.
func decodeJSON(data []byte) ([]*domain.Link, error) {
	var links []*domain.Link
	if err := json.Unmarshal(jsonc.ToJSON(data), &links); err != nil {
		return nil, fmt.Errorf("decode json: %w: %v", errs.ErrValidation, err)
	}
	out := links[:0]
	for _, l := range links {
		if l != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func encodeJSON(w io.Writer, links []*domain.Link) error {
	if links == nil {
		links = []*domain.Link{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(links); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
