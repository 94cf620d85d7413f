package handlers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/transfer"
	"github.com/MrSnakeDoc/goodnews/internal/utils"
)

const maxImportBody = 10 << 20

type importResponse struct {
	domain.ImportResult
	Message string `json:"message"`
}

// Import reads a json or csv link file from the body or from the multipart
// field "file". ?format= wins over the uploaded file name.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)

		var (
			body     io.Reader = r.Body
			filename string
		)
		if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "multipart/form-data" {
			file, header, err := r.FormFile("file")
			if err != nil {
				writeError(w, r, d, errInvalidRequest(err))
				return
			}
			defer utils.Close(file)
			body, filename = file, header.Filename
		}

		format, err := importFormat(r.URL.Query().Get("format"), filename)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		res, err := d.Links.Import(r.Context(), format, body)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, importResponse{
			ImportResult: res,
			Message:      i18n.T(r.Context(), "import_result", i18n.Vars{"added": res.Added, "skipped": res.Skipped}),
		})
	}
}

func importFormat(query, filename string) (transfer.Format, error) {
	if strings.TrimSpace(query) != "" {
		return transfer.ParseFormat(query)
	}
	if filename != "" {
		return transfer.FormatFromFilename(filename), nil
	}
	return transfer.FormatJSON, nil
}

// Export downloads every link as json (default) or csv.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := transfer.FormatJSON
		if q := r.URL.Query().Get("format"); q != "" {
			f, err := transfer.ParseFormat(q)
			if err != nil {
				writeError(w, r, d, err)
				return
			}
			format = f
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": format.Filename()}))
		w.Header().Set("Cache-Control", "no-store")
		if err := d.Links.Export(r.Context(), format, w); err != nil {
			// Headers may be gone already; the log keeps the cause.
			writeError(w, r, d, err)
		}
	}
}
