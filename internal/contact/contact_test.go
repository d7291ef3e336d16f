package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rubrica/internal/resolver"
	"github.com/agentstation/rubrica/pkg/errors"
)

type fakeResolver struct {
	outcomes map[string]resolver.Outcome
	calls    []string
	hints    []string
}

func (f *fakeResolver) Resolve(_ context.Context, _ *resolver.Session, name, hint string) (resolver.Outcome, error) {
	f.calls = append(f.calls, name)
	f.hints = append(f.hints, hint)
	if out, ok := f.outcomes[name]; ok {
		return out, nil
	}
	return resolver.Outcome{Original: name}, nil
}

type fakeStore struct {
	payloads []Payload
	err      error
}

func (f *fakeStore) CreateContact(_ context.Context, p Payload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.payloads = append(f.payloads, p)
	return "page-1", nil
}

func mustMapping(t *testing.T, raw map[string]string) FieldMapping {
	t.Helper()
	m, err := NewFieldMapping(raw)
	require.NoError(t, err)
	return m
}

func TestNewFieldMapping(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]string
		wantErr string
	}{
		{"nil mapping", nil, "mapping is required"},
		{"missing email", map[string]string{"nome": "Nome"}, "primary email mapping is required"},
		{"blank email", map[string]string{"email": "  "}, "primary email mapping is required"},
		{"unknown role", map[string]string{"email": "Email", "fax": "Fax"}, "unknown roles: fax"},
		{"valid", map[string]string{"email": "Email", "comune": "Comune", "tipo": ""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFieldMapping(tt.raw)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFieldMappingRolesAndProject(t *testing.T) {
	m := mustMapping(t, map[string]string{"comune": "Comune", "email": "Email", "tipo": "", "nome": "Nome"})
	assert.Equal(t, []Role{RoleEmail, RoleName, RoleMunicipality}, m.Roles())

	_, ok := m.Column(RoleKind)
	assert.False(t, ok)

	row := Row{"Email": " a@b.it ", "Comune": "Lecco", "Extra": "x"}
	assert.Equal(t, map[string]string{"email": "a@b.it", "comune": "Lecco"}, m.Project(row))
}

func TestPayloadBuilder(t *testing.T) {
	p := NewPayloadBuilder(" a@b.it ").
		Email2("not an email").
		Email3("c@d.it").
		Website("www.comune.lecco.it").
		Kind(" Sindaco ").
		Build()

	assert.Equal(t, "a@b.it", p.Email)
	assert.Empty(t, p.Email2)
	assert.Equal(t, "c@d.it", p.Email3)
	assert.Equal(t, "https://www.comune.lecco.it", p.Website)
	assert.Equal(t, "Sindaco", p.Kind)
	assert.Equal(t, "Contatto", p.Status)

	assert.Equal(t, "http://x.it", NewPayloadBuilder("a@b.it").Website("http://x.it").Build().Website)
	assert.Empty(t, NewPayloadBuilder("a@b.it").Website(" ").Build().Website)
}

func TestMapRowMissingEmail(t *testing.T) {
	res := &fakeResolver{}
	store := &fakeStore{}
	m := NewMapper(res, store)
	mapping := mustMapping(t, map[string]string{"email": "Email", "comune": "Comune"})

	for _, row := range []Row{{"Comune": "Lecco"}, {"Email": "   ", "Comune": "Lecco"}} {
		out := m.MapRow(context.Background(), resolver.NewSession(), row, mapping)
		assert.False(t, out.Success())
		assert.ErrorIs(t, out.Err, errors.ErrMissingEmail)
		assert.Equal(t, "missing email", out.Err.Error())
	}
	assert.Empty(t, res.calls)
	assert.Empty(t, store.payloads)
}

func TestMapRowFullPayload(t *testing.T) {
	res := &fakeResolver{outcomes: map[string]resolver.Outcome{
		"Barzano'": {Municipality: &resolver.Municipality{ID: "c-1", Name: "Barzanò"}, Corrected: true},
	}}
	store := &fakeStore{}
	m := NewMapper(res, store)
	mapping := mustMapping(t, map[string]string{
		"email": "Email", "email2": "PEC", "nome": "Nome", "carica": "Carica",
		"indirizzo": "Via", "telefono": "Tel", "cellulare": "Cell", "sito": "Web",
		"tipo": "Tipo", "comune": "Comune",
	})
	row := Row{
		"Email": "sindaco@comune.barzano.lc.it", "PEC": "pec@pec.it", "Nome": "Mario Rossi",
		"Carica": "Sindaco", "Via": "Via Roma 1", "Tel": "039 123", "Cell": "333 1",
		"Web": "comune.barzano.lc.it", "Tipo": "Istituzionale", "Comune": " Barzano' ",
	}

	out := m.MapRow(context.Background(), resolver.NewSession(), row, mapping)
	require.True(t, out.Success())
	assert.Equal(t, "page-1", out.ID)
	assert.Equal(t, &CorrectedMunicipality{Original: "Barzano'", Corrected: "Barzanò"}, out.Correction)
	assert.Empty(t, out.NotFound)
	assert.Equal(t, []string{"sindaco@comune.barzano.lc.it"}, res.hints)

	require.Len(t, store.payloads, 1)
	assert.Equal(t, Payload{
		Email:          "sindaco@comune.barzano.lc.it",
		Name:           "Mario Rossi",
		Position:       "Sindaco",
		Address:        "Via Roma 1",
		Email2:         "pec@pec.it",
		Phone:          "039 123",
		Mobile:         "333 1",
		Website:        "https://comune.barzano.lc.it",
		Kind:           "Istituzionale",
		Status:         "Contatto",
		MunicipalityID: "c-1",
	}, store.payloads[0])
}

func TestMapRowMunicipalityNotFound(t *testing.T) {
	store := &fakeStore{}
	m := NewMapper(&fakeResolver{}, store)
	mapping := mustMapping(t, map[string]string{"email": "Email", "comune": "Comune"})

	out := m.MapRow(context.Background(), resolver.NewSession(), Row{"Email": "a@b.it", "Comune": "Atlantide"}, mapping)
	require.True(t, out.Success())
	assert.Equal(t, "Atlantide", out.NotFound)
	assert.Nil(t, out.Correction)
	require.Len(t, store.payloads, 1)
	assert.Empty(t, store.payloads[0].MunicipalityID)
}

func TestMapRowSkipsEmptyMunicipality(t *testing.T) {
	res := &fakeResolver{}
	m := NewMapper(res, &fakeStore{})
	mapping := mustMapping(t, map[string]string{"email": "Email", "comune": "Comune"})

	out := m.MapRow(context.Background(), resolver.NewSession(), Row{"Email": "a@b.it", "Comune": " "}, mapping)
	assert.True(t, out.Success())
	assert.Empty(t, res.calls)
}

func TestMapRowStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.NewAPIError("notion", 400, "validation_error")}
	m := NewMapper(&fakeResolver{}, store)
	mapping := mustMapping(t, map[string]string{"email": "Email"})

	out := m.MapRow(context.Background(), resolver.NewSession(), Row{"Email": "a@b.it"}, mapping)
	assert.False(t, out.Success())
	assert.Contains(t, out.Err.Error(), "validation_error")
}
