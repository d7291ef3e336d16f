package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rubrica/pkg/errors"
	"github.com/agentstation/rubrica/pkg/logging"
)

// fakeStore is an in-memory reference store that counts calls.
type fakeStore struct {
	mu         sync.Mutex
	records    []Municipality
	exactCalls []string
	fuzzyCalls []string
	exactErr   error
	fuzzyErr   error
}

var accents = strings.NewReplacer("à", "a", "è", "e", "é", "e", "ì", "i", "ò", "o", "ù", "u")

func fold(s string) string {
	return accents.Replace(strings.ToLower(s))
}

func newStore(names ...string) *fakeStore {
	s := &fakeStore{}
	for i, n := range names {
		s.records = append(s.records, Municipality{ID: fmt.Sprintf("id-%d", i+1), Name: n})
	}
	return s
}

func (s *fakeStore) ExactQuery(_ context.Context, name string) (*Municipality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exactCalls = append(s.exactCalls, name)
	if s.exactErr != nil {
		return nil, s.exactErr
	}
	for _, m := range s.records {
		if m.Name == name {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ContainsQuery(_ context.Context, name string, limit int) ([]Municipality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fuzzyCalls = append(s.fuzzyCalls, name)
	if s.fuzzyErr != nil {
		return nil, s.fuzzyErr
	}
	var out []Municipality
	for _, m := range s.records {
		if strings.Contains(fold(m.Name), fold(name)) && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exactCalls) + len(s.fuzzyCalls)
}

type fakeSuggester struct {
	answers map[string]string
	err     error
	calls   int
}

func (f *fakeSuggester) SuggestCorrection(_ context.Context, name, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answers[name], nil
}

func TestResolveEmptyName(t *testing.T) {
	store := newStore("Milano")
	sugg := &fakeSuggester{}
	r := New(store, WithSuggester(sugg))
	sess := NewSession()

	for _, name := range []string{"", "   \t"} {
		out, err := r.Resolve(context.Background(), sess, name, "sindaco@comune.milano.mi.it")
		require.NoError(t, err)
		assert.False(t, out.Found())
		assert.Equal(t, "", out.Original)
	}
	assert.Zero(t, store.calls())
	assert.Zero(t, sugg.calls)
	assert.Zero(t, sess.Cache.Len())
}

func TestResolveExactMatch(t *testing.T) {
	store := newStore("Milano", "Lecco")
	r := New(store)
	sess := NewSession()

	out, err := r.Resolve(context.Background(), sess, " Lecco ", "")
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, Municipality{ID: "id-2", Name: "Lecco"}, *out.Municipality)
	assert.False(t, out.Corrected)
	assert.Equal(t, MethodExact, out.Method)
	assert.Empty(t, store.fuzzyCalls)
}

func TestResolveIsMemoized(t *testing.T) {
	store := newStore("Milano")
	r := New(store)
	sess := NewSession()
	ctx := context.Background()

	first, err := r.Resolve(ctx, sess, "Milano", "")
	require.NoError(t, err)
	calls := store.calls()

	second, err := r.Resolve(ctx, sess, "Milano", "")
	require.NoError(t, err)
	assert.Equal(t, calls, store.calls())
	assert.True(t, second.Cached)
	second.Cached = false
	assert.Equal(t, first, second)
}

func TestResolveFuzzyCaseInsensitive(t *testing.T) {
	store := newStore("Barzanò")
	r := New(store)

	out, err := r.Resolve(context.Background(), NewSession(), "barzano", "")
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, "Barzanò", out.Municipality.Name)
	assert.True(t, out.Corrected)
	assert.Equal(t, MethodSingle, out.Method)
}

func TestResolveFuzzyPrefersEqualFold(t *testing.T) {
	store := newStore("Castello di Brianza", "Brianza", "Besana in Brianza")
	r := New(store)

	out, err := r.Resolve(context.Background(), NewSession(), "brianza", "")
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, "Brianza", out.Municipality.Name)
	assert.Equal(t, MethodFuzzy, out.Method)
	assert.True(t, out.Corrected)
}

func TestResolveFuzzyAmbiguousFallsThrough(t *testing.T) {
	store := newStore("San Giovanni Bianco", "San Giovanni Lupatoto")
	r := New(store)
	sess := NewSession()

	out, err := r.Resolve(context.Background(), sess, "San Giovanni", "")
	require.NoError(t, err)
	assert.False(t, out.Found())
	assert.Equal(t, "San Giovanni", out.Original)

	entry, ok := sess.Cache.Get("san giovanni")
	require.True(t, ok)
	assert.False(t, entry.Found())
}

func TestResolveEmailHint(t *testing.T) {
	store := newStore("Barzano", "Barzago")
	sugg := &fakeSuggester{}
	r := New(store, WithSuggester(sugg))
	sess := NewSession()

	out, err := r.Resolve(context.Background(), sess, "Brz", "sindaco@comune.barzano.lc.it")
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, "Barzano", out.Municipality.Name)
	assert.True(t, out.Corrected)
	assert.Equal(t, MethodEmail, out.Method)
	assert.Zero(t, sugg.calls)

	records := sess.Ledger.Drain()
	require.Len(t, records, 1)
	assert.Equal(t, "Brz", records[0].Original)
	assert.Equal(t, "Barzano", records[0].Corrected)
	assert.Equal(t, MethodEmail, records[0].Method)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestResolveAssistant(t *testing.T) {
	store := newStore("San Giovanni in Persiceto", "San Giovanni Lupatoto")
	sugg := &fakeSuggester{answers: map[string]string{"S. Giovanni in P.": " San Giovanni in Persiceto\n"}}
	r := New(store, WithSuggester(sugg))
	sess := NewSession()

	out, err := r.Resolve(context.Background(), sess, "S. Giovanni in P.", "info@example.com")
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, "San Giovanni in Persiceto", out.Municipality.Name)
	assert.Equal(t, MethodAI, out.Method)
	assert.Equal(t, 1, sugg.calls)

	records := sess.Ledger.Drain()
	require.Len(t, records, 1)
	assert.Equal(t, MethodAI, records[0].Method)
}

func TestResolveAssistantSentinel(t *testing.T) {
	store := newStore("Milano")
	sugg := &fakeSuggester{answers: map[string]string{"Atlantide": "NON_TROVATO"}}
	r := New(store, WithSuggester(sugg))
	sess := NewSession()

	out, err := r.Resolve(context.Background(), sess, "Atlantide", "")
	require.NoError(t, err)
	assert.False(t, out.Found())
	assert.Zero(t, sess.Ledger.Len())
	// Only exact and fuzzy queries were issued; the sentinel is never looked up.
	assert.Equal(t, []string{"Atlantide"}, store.exactCalls)
}

func TestResolveNegativeIsMemoized(t *testing.T) {
	store := newStore("Milano")
	sugg := &fakeSuggester{}
	r := New(store, WithSuggester(sugg))
	sess := NewSession()
	ctx := context.Background()

	_, err := r.Resolve(ctx, sess, "Nowhere", "a@comune.nowhere.it")
	require.NoError(t, err)
	calls, suggestions := store.calls(), sugg.calls

	out, err := r.Resolve(ctx, sess, "  NOWHERE ", "a@comune.nowhere.it")
	require.NoError(t, err)
	assert.False(t, out.Found())
	assert.True(t, out.Cached)
	assert.Equal(t, "NOWHERE", out.Original)
	assert.Equal(t, calls, store.calls())
	assert.Equal(t, suggestions, sugg.calls)
}

func TestResolveStepFailureFallsThrough(t *testing.T) {
	tl := logging.NewTestLogger(t)
	store := newStore("Barzano")
	store.fuzzyErr = errors.NewAPIError("notion", 502, "bad gateway")
	r := New(store, WithLogger(tl.Logger))
	sess := NewSession()

	out, err := r.Resolve(context.Background(), sess, "Brz", "x@barzano.gov.it")
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, MethodEmail, out.Method)
	tl.AssertContains(t, "Resolution step failed")
	tl.AssertContains(t, "fuzzy")
}

func TestResolveFailureIsNotMemoized(t *testing.T) {
	store := newStore("Milano")
	store.exactErr = errors.NewAPIError("notion", 500, "down")
	store.fuzzyErr = store.exactErr
	r := New(store, WithLogger(logging.NewNopLogger()))
	sess := NewSession()
	ctx := context.Background()

	out, err := r.Resolve(ctx, sess, "Milano", "")
	require.NoError(t, err)
	assert.False(t, out.Found())
	_, ok := sess.Cache.Get("Milano")
	assert.False(t, ok)

	store.exactErr, store.fuzzyErr = nil, nil
	out, err = r.Resolve(ctx, sess, "Milano", "")
	require.NoError(t, err)
	assert.True(t, out.Found())
}

func TestResolveSuggesterFailure(t *testing.T) {
	store := newStore("Milano")
	sugg := &fakeSuggester{err: errors.ErrProviderUnavailable}
	r := New(store, WithSuggester(sugg), WithLogger(logging.NewNopLogger()))

	out, err := r.Resolve(context.Background(), NewSession(), "Xyz", "")
	require.NoError(t, err)
	assert.False(t, out.Found())
	assert.Equal(t, 1, sugg.calls)
}

func TestResolveDirectLookupsAreMemoized(t *testing.T) {
	store := newStore("Barzano")
	r := New(store)
	sess := NewSession()
	ctx := context.Background()

	_, err := r.Resolve(ctx, sess, "Brz", "a@comune.barzano.lc.it")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, sess, "Bzn", "b@comune.barzano.lc.it")
	require.NoError(t, err)

	direct := 0
	for _, name := range store.exactCalls {
		if name == "Barzano" {
			direct++
		}
	}
	assert.Equal(t, 1, direct)
	assert.Equal(t, 2, sess.Ledger.Len())
}

func TestResolveCancelledContext(t *testing.T) {
	store := newStore("Milano")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(store).Resolve(ctx, NewSession(), "Nowhere", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheSharesKeyAcrossCase(t *testing.T) {
	store := newStore("Milano")
	r := New(store)
	sess := NewSession()
	ctx := context.Background()

	_, err := r.Resolve(ctx, sess, "Milano", "")
	require.NoError(t, err)
	out, err := r.Resolve(ctx, sess, "milano", "")
	require.NoError(t, err)
	assert.True(t, out.Cached)
	assert.True(t, out.Corrected)
	assert.Equal(t, "Milano", out.Municipality.Name)
}

func TestSessionReset(t *testing.T) {
	sess := NewSession()
	sess.Cache.Put("Milano", Entry{Municipality: &Municipality{ID: "1", Name: "Milano"}})
	sess.Ledger.Record("Mlano", "Milano", MethodAI)

	sess.Reset()
	assert.Zero(t, sess.Cache.Len())
	assert.Zero(t, sess.Ledger.Len())
}

func TestLedgerOrder(t *testing.T) {
	l := NewLedger()
	l.Record("a", "A", MethodEmail)
	l.Record("b", "B", MethodAI)

	got := l.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Original)
	assert.Equal(t, "b", got[1].Original)
	assert.Empty(t, l.Drain())
}
