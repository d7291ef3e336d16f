// Package handlers provides HTTP request handlers for the rubrica server.
package handlers

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/rubrica/internal/cmd/application"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app       application.Application
	staticDir string
	logger    *zerolog.Logger
}

// New creates a new Handlers instance. staticDir, when set, is the
// directory whose index.html is served at "/".
func New(app application.Application, staticDir string, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		app:       app,
		staticDir: staticDir,
		logger:    logger,
	}
}
