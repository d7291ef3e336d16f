package importer

import (
	"encoding/json"
	"sort"

	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/internal/resolver"
	"github.com/agentstation/rubrica/pkg/errors"
)

// RowFailure reports a row that could not be imported.
type RowFailure struct {
	Row   int    `json:"row" yaml:"row"`
	Error string `json:"error" yaml:"error"`
}

// newRowFailure reports err against the row it carries, falling back to rowNum.
func newRowFailure(rowNum int, err error) RowFailure {
	var rowErr *errors.RowError
	if errors.As(err, &rowErr) {
		return RowFailure{Row: rowErr.Row, Error: rowErr.Error()}
	}
	return RowFailure{Row: rowNum, Error: err.Error()}
}

// UnimportedContact is the field projection of a row that failed or whose
// municipality could not be resolved, annotated with the reason.
type UnimportedContact struct {
	Fields                 map[string]string `json:"fields" yaml:"fields"`
	UnresolvedMunicipality string            `json:"unresolvedMunicipality,omitempty" yaml:"unresolvedMunicipality,omitempty"`
	Error                  string            `json:"error,omitempty" yaml:"error,omitempty"`
	Row                    int               `json:"row" yaml:"row"`
}

// Result aggregates the outcome of an import run.
type Result struct {
	RunID                   string                          `json:"runId" yaml:"runId"`
	TotalRows               int                             `json:"totalRows" yaml:"totalRows"`
	Batches                 int                             `json:"batches" yaml:"batches"`
	SuccessCount            int                             `json:"successCount" yaml:"successCount"`
	Errors                  []RowFailure                    `json:"errors" yaml:"errors"`
	CorrectedMunicipalities []contact.CorrectedMunicipality `json:"correctedMunicipalities" yaml:"correctedMunicipalities"`
	NotFoundMunicipalities  []string                        `json:"notFoundMunicipalities" yaml:"notFoundMunicipalities"`
	UnimportedContacts      []UnimportedContact             `json:"unimportedContacts" yaml:"unimportedContacts"`
	Corrections             []resolver.Correction           `json:"corrections,omitempty" yaml:"corrections,omitempty"`

	notFound   map[string]struct{}
	unimported map[string]struct{}
}

func newResult(runID string, totalRows int) *Result {
	return &Result{
		RunID:                   runID,
		TotalRows:               totalRows,
		Errors:                  []RowFailure{},
		CorrectedMunicipalities: []contact.CorrectedMunicipality{},
		NotFoundMunicipalities:  []string{},
		UnimportedContacts:      []UnimportedContact{},
		notFound:                make(map[string]struct{}),
		unimported:              make(map[string]struct{}),
	}
}

// add folds one row outcome into the result.
func (r *Result) add(rowNum int, fields map[string]string, out contact.Outcome) {
	if !out.Success() {
		failure := newRowFailure(rowNum, out.Err)
		r.Errors = append(r.Errors, failure)
		r.addUnimported(UnimportedContact{Fields: fields, Error: failure.Error, Row: failure.Row})
		return
	}

	r.SuccessCount++
	if out.Correction != nil {
		r.CorrectedMunicipalities = append(r.CorrectedMunicipalities, *out.Correction)
	}
	if out.NotFound != "" {
		if _, seen := r.notFound[out.NotFound]; !seen {
			r.notFound[out.NotFound] = struct{}{}
			r.NotFoundMunicipalities = append(r.NotFoundMunicipalities, out.NotFound)
		}
		r.addUnimported(UnimportedContact{Fields: fields, UnresolvedMunicipality: out.NotFound, Row: rowNum})
	}
}

// addUnimported appends c unless an entry with the same fields and
// annotation is already present. The row number is not part of the identity.
func (r *Result) addUnimported(c UnimportedContact) {
	key := dedupKey(c)
	if _, seen := r.unimported[key]; seen {
		return
	}
	r.unimported[key] = struct{}{}
	r.UnimportedContacts = append(r.UnimportedContacts, c)
}

func dedupKey(c UnimportedContact) string {
	keys := make([]string, 0, len(c.Fields))
	for k := range c.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, 2*len(keys)+2)
	for _, k := range keys {
		parts = append(parts, k, c.Fields[k])
	}
	parts = append(parts, c.UnresolvedMunicipality, c.Error)
	// JSON encoding of a string slice is unambiguous.
	b, _ := json.Marshal(parts)
	return string(b)
}

// Failed reports how many rows failed.
func (r *Result) Failed() int {
	return len(r.Errors)
}
