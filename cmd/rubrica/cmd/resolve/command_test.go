package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rubrica/internal/cmd/application"
	"github.com/agentstation/rubrica/internal/resolver"
	"github.com/agentstation/rubrica/pkg/errors"
)

type fakeResolver struct {
	name, email string
	outcome     resolver.Outcome
	record      bool
	err         error
}

func (f *fakeResolver) Resolve(_ context.Context, sess *resolver.Session, name, email string) (resolver.Outcome, error) {
	f.name, f.email = name, email
	if f.record && f.outcome.Municipality != nil {
		sess.Ledger.Record(name, f.outcome.Municipality.Name, f.outcome.Method)
	}
	return f.outcome, f.err
}

func (f *fakeResolver) HasSuggester() bool { return false }

func execute(t *testing.T, res *fakeResolver, args ...string) (string, error) {
	t.Helper()
	app := &application.Mock{
		ResolverFunc: func() (application.Resolver, error) { return res, nil },
	}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCorrected(t *testing.T) {
	res := &fakeResolver{
		outcome: resolver.Outcome{
			Municipality: &resolver.Municipality{ID: "m-1", Name: "Barzanò"},
			Corrected:    true,
			Method:       resolver.MethodFuzzy,
		},
		record: true,
	}

	out, err := execute(t, res, "Barzano", "--email", "info@comune.barzano.lc.it")
	require.NoError(t, err)
	assert.Equal(t, "Barzano", res.name)
	assert.Equal(t, "info@comune.barzano.lc.it", res.email)

	var result Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Found)
	assert.True(t, result.Corrected)
	assert.Equal(t, "m-1", result.ID)
	assert.Equal(t, "Barzanò", result.Name)
	assert.Equal(t, resolver.MethodFuzzy, result.Method)
	require.Len(t, result.Corrections, 1)
	assert.Equal(t, "Barzano", result.Corrections[0].Original)
}

func TestResolveJoinsArgs(t *testing.T) {
	res := &fakeResolver{outcome: resolver.Outcome{Original: "San Giovanni"}}

	out, err := execute(t, res, "San", "Giovanni")
	require.NoError(t, err)
	assert.Equal(t, "San Giovanni", res.name)

	var result Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Found)
	assert.Empty(t, result.ID)
	assert.Empty(t, result.Corrections)
}

func TestResolveError(t *testing.T) {
	res := &fakeResolver{err: errors.NewAPIError("notion", 500, "boom")}
	_, err := execute(t, res, "Lecco")
	require.Error(t, err)
}

func TestResolveNotConfigured(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"Lecco"})
	assert.Error(t, cmd.Execute())
}

func TestResultTables(t *testing.T) {
	found := Result{Input: "Lecco", Found: true, Name: "Lecco", ID: "m-2", Method: resolver.MethodExact}.Tables()
	require.Len(t, found, 1)
	assert.Contains(t, found[0].Rows, []string{"Method", "exact"})

	missing := Result{Input: "Nowhere"}.Tables()
	assert.Contains(t, missing[0].Rows, []string{"Found", "no"})
}
