package handlers

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/agentstation/rubrica/internal/server/response"
	"github.com/agentstation/rubrica/pkg/errors"
)

//go:embed static/index.html
var defaultIndex []byte

// HandleIndex serves the upload page at "/" and 404 for any other GET path.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		response.NotFound(w, "page not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		response.MethodNotAllowed(w, r.Method)
		return
	}

	page := defaultIndex
	if h.staticDir != "" {
		data, err := os.ReadFile(filepath.Join(h.staticDir, "index.html"))
		if err != nil {
			h.logger.Warn().Err(err).Str("dir", h.staticDir).Msg("index.html not readable")
			response.ErrorFromType(w, fmt.Errorf("index.html: %w", errors.ErrNotFound))
			return
		}
		page = data
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// HandleFavicon returns 204 so browsers stop asking.
func (h *Handlers) HandleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
