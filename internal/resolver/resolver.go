// Package resolver maps free-text municipality names to canonical records in
// the reference store. Resolution walks an ordered chain, cheapest first:
//
//	cache → exact → fuzzy → email hint → assistant suggestion
//
// The first step that succeeds ends the chain. Outcomes, including misses,
// are memoized in the run's Session; automatic corrections made by the
// email and assistant steps are appended to the Session's Ledger.
package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/rubrica/internal/emailhint"
	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
	"github.com/agentstation/rubrica/pkg/logging"
)

// Municipality is a canonical reference store record.
type Municipality struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Method names the chain step that produced a result.
type Method string

// Chain steps.
const (
	MethodExact  Method = "exact"
	MethodFuzzy  Method = "fuzzy"
	MethodSingle Method = "single"
	MethodEmail  Method = "email"
	MethodAI     Method = "ai"
	MethodNone   Method = ""
)

// Outcome is the result of one resolution. A nil Municipality means the
// name could not be resolved; Original then carries the name as given.
type Outcome struct {
	Municipality *Municipality
	Corrected    bool
	Original     string
	Method       Method
	Cached       bool
}

// Found reports whether the name resolved.
func (o Outcome) Found() bool {
	return o.Municipality != nil
}

// Lookup queries the reference store by title.
type Lookup interface {
	// ExactQuery returns the record whose name equals name, or nil.
	ExactQuery(ctx context.Context, name string) (*Municipality, error)
	// ContainsQuery returns up to limit records whose name contains name.
	ContainsQuery(ctx context.Context, name string, limit int) ([]Municipality, error)
}

// Suggester proposes a corrected municipality name. An empty string with a
// nil error means no suggestion.
type Suggester interface {
	SuggestCorrection(ctx context.Context, name, emailHint string) (string, error)
}

// Resolver runs the resolution chain.
type Resolver struct {
	lookup    Lookup
	suggester Suggester
	logger    *zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSuggester enables the assistant step. A nil suggester disables it.
func WithSuggester(s Suggester) Option {
	return func(r *Resolver) {
		r.suggester = s
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver over the given reference store.
func New(lookup Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		lookup: lookup,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasSuggester reports whether the assistant step is enabled.
func (r *Resolver) HasSuggester() bool {
	return r.suggester != nil
}

// Resolve maps name to a canonical municipality. emailHint may be empty.
// Store and assistant failures make the failing step fall through; they are
// logged and never returned. Resolve only returns an error when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, sess *Session, name, emailHint string) (Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{}, nil
	}

	if e, ok := sess.Cache.Get(name); ok {
		out := outcomeFor(name, e)
		out.Cached = true
		return out, nil
	}

	log := r.log(ctx).With().Str("comune", name).Logger()
	failed := false

	// Exact match.
	m, err := r.lookup.ExactQuery(ctx, name)
	if err != nil {
		failed = true
		r.stepFailed(&log, "exact", name, err)
	} else if m != nil {
		log.Debug().Str("canonical", m.Name).Msg("Exact match")
		return r.found(sess, name, m, MethodExact), nil
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	// Fuzzy match.
	candidates, err := r.lookup.ContainsQuery(ctx, name, constants.FuzzyPageSize)
	if err != nil {
		failed = true
		r.stepFailed(&log, "fuzzy", name, err)
	} else if m, method := pickCandidate(name, candidates); m != nil {
		log.Debug().Str("canonical", m.Name).Str("method", string(method)).Int("candidates", len(candidates)).Msg("Fuzzy match")
		return r.found(sess, name, m, method), nil
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	// Email-derived hint.
	if candidate, ok := emailhint.Extract(emailHint); ok {
		m, err := r.direct(ctx, sess, candidate)
		if err != nil {
			failed = true
			r.stepFailed(&log, "email", candidate, err)
		} else if m != nil {
			sess.Ledger.Record(name, m.Name, MethodEmail)
			log.Info().Str("corrected", m.Name).Str("method", string(MethodEmail)).Msg("Municipality corrected")
			return r.found(sess, name, m, MethodEmail), nil
		}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	// Assistant suggestion.
	if r.suggester != nil {
		m, err := r.suggest(ctx, sess, name, emailHint)
		if err != nil {
			failed = true
			r.stepFailed(&log, "ai", name, err)
		} else if m != nil {
			sess.Ledger.Record(name, m.Name, MethodAI)
			log.Info().Str("corrected", m.Name).Str("method", string(MethodAI)).Msg("Municipality corrected")
			return r.found(sess, name, m, MethodAI), nil
		}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	// A miss caused by a failing service may succeed later, so it is not memoized.
	if !failed {
		sess.Cache.Put(name, Entry{})
	}
	log.Debug().Bool("cached", !failed).Msg("Municipality not found")
	return Outcome{Original: name}, nil
}

// suggest asks the assistant for a correction and verifies it in the store.
func (r *Resolver) suggest(ctx context.Context, sess *Session, name, emailHint string) (*Municipality, error) {
	suggestion, err := r.suggester.SuggestCorrection(ctx, name, emailHint)
	if err != nil {
		return nil, err
	}
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" || suggestion == constants.NotFoundSentinel {
		return nil, nil
	}
	r.log(ctx).Debug().Str("comune", name).Str("suggestion", suggestion).Msg("Assistant suggestion")
	return r.direct(ctx, sess, suggestion)
}

// direct performs an exact lookup outside the chain, memoized per session.
func (r *Resolver) direct(ctx context.Context, sess *Session, name string) (*Municipality, error) {
	if e, ok := sess.Cache.getDirect(name); ok {
		return e.Municipality, nil
	}
	m, err := r.lookup.ExactQuery(ctx, name)
	if err != nil {
		return nil, err
	}
	sess.Cache.putDirect(name, Entry{Municipality: m, Method: MethodExact})
	return m, nil
}

func (r *Resolver) found(sess *Session, name string, m *Municipality, method Method) Outcome {
	e := Entry{Municipality: m, Method: method}
	sess.Cache.Put(name, e)
	return outcomeFor(name, e)
}

func (r *Resolver) stepFailed(log *zerolog.Logger, step, name string, err error) {
	log.Warn().Err(&errors.StepError{Step: step, Name: name, Err: err}).Msg("Resolution step failed")
}

func (r *Resolver) log(ctx context.Context) *zerolog.Logger {
	if l := logging.FromContext(ctx); l != logging.Default() {
		return l
	}
	return r.logger
}

// pickCandidate applies the fuzzy rules: a case-insensitive equal name wins,
// otherwise a lone candidate is accepted.
func pickCandidate(name string, candidates []Municipality) (*Municipality, Method) {
	for i := range candidates {
		if strings.EqualFold(candidates[i].Name, name) {
			return &candidates[i], MethodFuzzy
		}
	}
	if len(candidates) == 1 {
		return &candidates[0], MethodSingle
	}
	return nil, MethodNone
}

// outcomeFor derives the outcome for name from a cached entry. Names that
// share a cache key may differ in case, so Corrected is computed per caller.
func outcomeFor(name string, e Entry) Outcome {
	if !e.Found() {
		return Outcome{Original: name, Method: e.Method}
	}
	corrected := e.Municipality.Name != name
	switch e.Method {
	case MethodSingle, MethodEmail, MethodAI:
		corrected = true
	}
	m := *e.Municipality
	return Outcome{
		Municipality: &m,
		Corrected:    corrected,
		Original:     name,
		Method:       e.Method,
	}
}
