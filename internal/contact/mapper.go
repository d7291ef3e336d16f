// Package contact turns input rows into contact store records. A Mapper
// validates the primary email, builds a typed Payload from the mapped
// columns, resolves the municipality through the run's resolver session and
// submits the result.
package contact

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/rubrica/internal/resolver"
	"github.com/agentstation/rubrica/pkg/errors"
	"github.com/agentstation/rubrica/pkg/logging"
)

// Store creates contact records.
type Store interface {
	CreateContact(ctx context.Context, p Payload) (string, error)
}

// MunicipalityResolver resolves free-text municipality names.
type MunicipalityResolver interface {
	Resolve(ctx context.Context, sess *resolver.Session, name, emailHint string) (resolver.Outcome, error)
}

// CorrectedMunicipality reports a municipality name that was replaced by its canonical form.
type CorrectedMunicipality struct {
	Original  string `json:"original" yaml:"original"`
	Corrected string `json:"corrected" yaml:"corrected"`
}

// Outcome is the terminal state of one row.
type Outcome struct {
	// ID of the created record, set on success.
	ID string
	// Correction is set when the municipality was corrected.
	Correction *CorrectedMunicipality
	// NotFound carries the municipality name that could not be resolved.
	NotFound string
	// Err is set when the row failed.
	Err error
}

// Success reports whether the record was created.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// Mapper maps rows to contact records.
type Mapper struct {
	resolver MunicipalityResolver
	store    Store
}

// NewMapper creates a Mapper.
func NewMapper(res MunicipalityResolver, store Store) *Mapper {
	return &Mapper{resolver: res, store: store}
}

// MapRow builds and submits the contact described by row. Rows without a
// primary email fail before any external call. An unresolved municipality
// does not block submission.
func (m *Mapper) MapRow(ctx context.Context, sess *resolver.Session, row Row, mapping FieldMapping) Outcome {
	email, _ := mapping.Value(row, RoleEmail)
	if email == "" {
		return Outcome{Err: errors.ErrMissingEmail}
	}

	b := NewPayloadBuilder(email)
	if v, ok := mapping.Value(row, RoleName); ok {
		b.Name(v)
	}
	if v, ok := mapping.Value(row, RolePosition); ok {
		b.Position(v)
	}
	if v, ok := mapping.Value(row, RoleAddress); ok {
		b.Address(v)
	}
	if v, ok := mapping.Value(row, RoleEmail2); ok {
		b.Email2(v)
	}
	if v, ok := mapping.Value(row, RoleEmail3); ok {
		b.Email3(v)
	}
	if v, ok := mapping.Value(row, RolePhone); ok {
		b.Phone(v)
	}
	if v, ok := mapping.Value(row, RoleMobile); ok {
		b.Mobile(v)
	}
	if v, ok := mapping.Value(row, RoleWebsite); ok {
		b.Website(v)
	}
	if v, ok := mapping.Value(row, RoleKind); ok {
		b.Kind(v)
	}

	var out Outcome
	if name, _ := mapping.Value(row, RoleMunicipality); name != "" {
		res, err := m.resolver.Resolve(logging.WithMunicipality(ctx, name), sess, name, email)
		if err != nil {
			return Outcome{Err: err}
		}
		switch {
		case res.Found():
			b.Municipality(res.Municipality.ID)
			if res.Corrected {
				out.Correction = &CorrectedMunicipality{Original: name, Corrected: res.Municipality.Name}
			}
		default:
			out.NotFound = name
		}
	}

	id, err := m.store.CreateContact(ctx, b.Build())
	if err != nil {
		return Outcome{Err: err}
	}
	out.ID = id

	logger := logging.FromContext(ctx)
	logEvent(logger, out).Str("id", id).Msg("Contact created")
	return out
}

func logEvent(logger *zerolog.Logger, out Outcome) *zerolog.Event {
	e := logger.Debug()
	if out.Correction != nil {
		e = e.Str("comune", out.Correction.Original).Str("corrected", out.Correction.Corrected)
	}
	if out.NotFound != "" {
		e = e.Str("comune_not_found", out.NotFound)
	}
	return e
}
