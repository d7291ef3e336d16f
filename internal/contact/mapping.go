package contact

import (
	"sort"
	"strings"

	"github.com/agentstation/rubrica/pkg/errors"
)

// Role is a semantic contact field an input column can be mapped to.
type Role string

// Roles understood by the mapper.
const (
	RoleEmail        Role = "email"
	RoleEmail2       Role = "email2"
	RoleEmail3       Role = "email3"
	RoleName         Role = "nome"
	RolePosition     Role = "carica"
	RoleAddress      Role = "indirizzo"
	RolePhone        Role = "telefono"
	RoleMobile       Role = "cellulare"
	RoleWebsite      Role = "sito"
	RoleKind         Role = "tipo"
	RoleMunicipality Role = "comune"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{
	RoleEmail, RoleEmail2, RoleEmail3, RoleName, RolePosition, RoleAddress,
	RolePhone, RoleMobile, RoleWebsite, RoleKind, RoleMunicipality,
}

// ParseRole returns the Role named s.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Row is one input record keyed by column name.
type Row map[string]string

// FieldMapping binds roles to input columns. It is validated once per run.
type FieldMapping struct {
	columns map[Role]string
}

// NewFieldMapping validates a role → column mapping. Roles mapped to an
// empty column are ignored; unknown roles are rejected and the email role
// is mandatory.
func NewFieldMapping(raw map[string]string) (FieldMapping, error) {
	if len(raw) == 0 {
		return FieldMapping{}, errors.NewValidationError("mapping", nil, "mapping is required")
	}

	m := FieldMapping{columns: make(map[Role]string, len(raw))}
	var unknown []string
	for key, column := range raw {
		role, ok := ParseRole(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if column = strings.TrimSpace(column); column != "" {
			m.columns[role] = column
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return FieldMapping{}, errors.NewValidationError("mapping", unknown, "unknown roles: "+strings.Join(unknown, ", "))
	}
	if _, ok := m.columns[RoleEmail]; !ok {
		return FieldMapping{}, errors.NewValidationError("mapping.email", nil, "primary email mapping is required")
	}
	return m, nil
}

// Column returns the column mapped to role.
func (m FieldMapping) Column(role Role) (string, bool) {
	c, ok := m.columns[role]
	return c, ok
}

// Roles returns the mapped roles in display order.
func (m FieldMapping) Roles() []Role {
	out := make([]Role, 0, len(m.columns))
	for _, r := range AllRoles {
		if _, ok := m.columns[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Value returns the trimmed value of role in row. ok is false when the role
// is unmapped or its column is absent from the row.
func (m FieldMapping) Value(row Row, role Role) (string, bool) {
	column, ok := m.columns[role]
	if !ok {
		return "", false
	}
	v, ok := row[column]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Project returns the mapped field values of row keyed by role name.
// Roles whose column is missing from the row are left out.
func (m FieldMapping) Project(row Row) map[string]string {
	out := make(map[string]string, len(m.columns))
	for role := range m.columns {
		if v, ok := m.Value(row, role); ok {
			out[string(role)] = v
		}
	}
	return out
}

// Map returns the mapping as plain strings, for reports.
func (m FieldMapping) Map() map[string]string {
	out := make(map[string]string, len(m.columns))
	for r, c := range m.columns {
		out[string(r)] = c
	}
	return out
}
