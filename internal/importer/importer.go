// Package importer drives contact import runs. Rows are processed in input
// order, in fixed-size batches separated by a Pacer. Each row ends in
// success or failure on its first attempt; a failing or panicking row never
// aborts its batch or the run.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/internal/resolver"
	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
	"github.com/agentstation/rubrica/pkg/logging"
)

// RowMapper maps and submits a single row.
type RowMapper interface {
	MapRow(ctx context.Context, sess *resolver.Session, row contact.Row, mapping contact.FieldMapping) contact.Outcome
}

// Importer runs imports. It holds no per-run state and is safe for
// concurrent use.
type Importer struct {
	mapper    RowMapper
	batchSize int
	newPacer  func() Pacer
	logger    *zerolog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithBatchSize sets the number of rows per batch.
func WithBatchSize(n int) Option {
	return func(imp *Importer) {
		if n > 0 {
			imp.batchSize = n
		}
	}
}

// WithPause pauses for interval after every batch but the last.
func WithPause(interval time.Duration) Option {
	return func(imp *Importer) {
		imp.newPacer = func() Pacer { return NewPausePacer(interval) }
	}
}

// WithPacer sets the factory producing one Pacer per run.
func WithPacer(factory func() Pacer) Option {
	return func(imp *Importer) {
		if factory != nil {
			imp.newPacer = factory
		}
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(imp *Importer) {
		if logger != nil {
			imp.logger = logger
		}
	}
}

// New creates an Importer.
func New(mapper RowMapper, opts ...Option) *Importer {
	imp := &Importer{
		mapper:    mapper,
		batchSize: constants.DefaultBatchSize,
		newPacer:  func() Pacer { return NewPausePacer(constants.DefaultBatchPause) },
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// BatchSize returns the configured batch size.
func (imp *Importer) BatchSize() int {
	return imp.batchSize
}

// Run imports rows using mapping. Every run gets a fresh resolver session.
// Run returns an error only for an empty input or when ctx is done; in the
// latter case the partial result is returned alongside the error.
func (imp *Importer) Run(ctx context.Context, rows []contact.Row, mapping contact.FieldMapping) (*Result, error) {
	if len(rows) == 0 {
		return nil, errors.NewValidationError("content", nil, "csv has no data rows")
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(logging.WithLogger(ctx, imp.baseLogger(ctx)), runID)
	log := logging.FromContext(ctx)

	sess := resolver.NewSession()
	pacer := imp.newPacer()
	result := newResult(runID, len(rows))
	started := time.Now()

	log.Info().
		Int("rows", len(rows)).
		Int("batch_size", imp.batchSize).
		Strs("roles", roleNames(mapping)).
		Msg("Import started")

	for start := 0; start < len(rows); start += imp.batchSize {
		end := min(start+imp.batchSize, len(rows))
		result.Batches++
		log.Info().Int("batch", result.Batches).Int("from", start+1).Int("to", end).Msg("Batch started")

		for i := start; i < end; i++ {
			rowNum := i + 1
			out := imp.mapRow(logging.WithRow(ctx, rowNum), rowNum, sess, rows[i], mapping)
			if !out.Success() {
				log.Warn().Int("row", rowNum).Err(out.Err).Msg("Row failed")
			}
			result.add(rowNum, mapping.Project(rows[i]), out)
		}

		if end < len(rows) {
			if err := pacer.Wait(ctx); err != nil {
				imp.finish(log, sess, result, started)
				return result, err
			}
		}
	}

	imp.finish(log, sess, result, started)
	return result, nil
}

// mapRow isolates a single row, turning panics into row failures. Any
// failure is returned as an *errors.RowError carrying rowNum.
func (imp *Importer) mapRow(ctx context.Context, rowNum int, sess *resolver.Session, row contact.Row, mapping contact.FieldMapping) (out contact.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = contact.Outcome{Err: fmt.Errorf("unexpected error: %v", r)}
		}
		if out.Err != nil {
			out.Err = errors.NewRowError(rowNum, out.Err)
		}
	}()
	return imp.mapper.MapRow(ctx, sess, row, mapping)
}

func (imp *Importer) finish(log *zerolog.Logger, sess *resolver.Session, result *Result, started time.Time) {
	if corrections := sess.Ledger.Drain(); len(corrections) > 0 {
		result.Corrections = corrections
		for _, c := range corrections {
			log.Info().
				Str("original", c.Original).
				Str("corrected", c.Corrected).
				Str("method", string(c.Method)).
				Msg("Correction")
		}
	}
	log.Info().
		Int("success", result.SuccessCount).
		Int("errors", result.Failed()).
		Int("corrected", len(result.CorrectedMunicipalities)).
		Int("not_found", len(result.NotFoundMunicipalities)).
		Int("batches", result.Batches).
		Dur("duration", time.Since(started)).
		Msg("Import completed")
}

// baseLogger prefers a logger carried by ctx, such as the request logger.
func (imp *Importer) baseLogger(ctx context.Context) *zerolog.Logger {
	if l := logging.FromContext(ctx); l != logging.Default() {
		return l
	}
	return imp.logger
}

func roleNames(mapping contact.FieldMapping) []string {
	roles := mapping.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
