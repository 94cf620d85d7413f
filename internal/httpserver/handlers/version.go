package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
)

type versionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Version reports the running build so clients can detect an update.
func Version(d deps.Deps) http.HandlerFunc {
	resp := versionResponse{Version: d.Version, Commit: d.Commit, BuildDate: d.BuildDate, GoVersion: d.GoVersion}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}
