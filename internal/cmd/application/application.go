// Package application provides the application interface for rubrica commands.
//
// The Application interface defines the contract between the application layer
// and command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            imp, err := app.Importer()
//	            if err != nil {
//	                return err
//	            }
//	            result, err := imp.Run(cmd.Context(), rows, mapping)
//	            // ... render result
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ImporterFunc: func() (application.Importer, error) {
//	        return fakeImporter, nil
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/internal/importer"
	"github.com/agentstation/rubrica/internal/notion"
	"github.com/agentstation/rubrica/internal/resolver"
)

// Importer runs a batch import over parsed rows.
type Importer interface {
	Run(ctx context.Context, rows []contact.Row, mapping contact.FieldMapping) (*importer.Result, error)
}

// Resolver resolves a single municipality name.
type Resolver interface {
	Resolve(ctx context.Context, sess *resolver.Session, name, emailHint string) (resolver.Outcome, error)
	HasSuggester() bool
}

// Workspace reports the identity behind the configured store credential.
type Workspace interface {
	Me(ctx context.Context) (notion.User, error)
}

// Application provides the application interface that commands need.
// The App struct from cmd/rubrica/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Importer returns the batch import orchestrator wired to the store.
	// It is built lazily on first use and cached.
	Importer() (Importer, error)

	// Resolver returns the municipality resolver wired to the store
	// and, when configured, the assistant.
	Resolver() (Resolver, error)

	// Workspace returns the store client used for connection checks.
	Workspace() (Workspace, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
