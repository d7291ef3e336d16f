package handlers

import (
	"net/http"

	"github.com/agentstation/rubrica/internal/server/response"
	"github.com/agentstation/rubrica/pkg/logging"
)

// HandleTestConnection handles POST /test-connection. It checks that the
// store credential is accepted and reports the user behind it.
func (h *Handlers) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, r.Method)
		return
	}
	log := logging.FromContext(r.Context())

	ws, err := h.app.Workspace()
	if err != nil {
		log.Error().Err(err).Msg("Workspace client unavailable")
		response.ErrorFromType(w, err)
		return
	}

	user, err := ws.Me(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Connection test failed")
		response.Error(w, response.StatusFor(err), "notion connection failed: "+err.Error())
		return
	}

	log.Info().Str("user", user.Name).Str("type", user.Type).Msg("Connection test succeeded")
	response.OK(w, map[string]any{
		"user": user.Name,
		"type": user.Type,
	})
}
