package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/internal/ingest"
	"github.com/agentstation/rubrica/internal/server/response"
	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
	"github.com/agentstation/rubrica/pkg/logging"
)

// ImportRequest is the body of POST /parse-and-import.
type ImportRequest struct {
	// Content is the base64 encoded CSV or XLSX file.
	Content string `json:"content"`
	// Mapping maps semantic roles to column names.
	Mapping map[string]string `json:"mapping"`
}

// HandleParseAndImport handles POST /parse-and-import.
func (h *Handlers) HandleParseAndImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, r.Method)
		return
	}
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestTooLarge(w)
			return
		}
		log.Warn().Err(err).Msg("Invalid JSON body")
		response.BadRequest(w, "invalid JSON")
		return
	}

	rows, mapping, err := decodeImport(req)
	if err != nil {
		log.Warn().Err(err).Msg("Import rejected")
		response.ErrorFromType(w, err)
		return
	}

	imp, err := h.app.Importer()
	if err != nil {
		log.Error().Err(err).Msg("Importer unavailable")
		response.ErrorFromType(w, err)
		return
	}

	// Detached from the client: a started run always completes.
	result, err := imp.Run(context.WithoutCancel(r.Context()), rows, mapping)
	if err != nil {
		log.Error().Err(err).Msg("Import failed")
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, map[string]any{"results": result})
}

// decodeImport validates the request and decodes its rows.
func decodeImport(req ImportRequest) ([]contact.Row, contact.FieldMapping, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, contact.FieldMapping{}, errors.NewValidationError("content", nil, "csv content is required")
	}
	mapping, err := contact.NewFieldMapping(req.Mapping)
	if err != nil {
		return nil, contact.FieldMapping{}, err
	}
	rows, _, err := ingest.Parse(req.Content)
	if err != nil {
		return nil, contact.FieldMapping{}, err
	}
	return rows, mapping, nil
}
