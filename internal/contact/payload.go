package contact

import (
	"strings"

	"github.com/agentstation/rubrica/pkg/constants"
)

// Payload is the typed contact record submitted to the contact store.
// Empty fields are omitted by the store client.
type Payload struct {
	Email          string
	Name           string
	Position       string
	Address        string
	Email2         string
	Email3         string
	Phone          string
	Mobile         string
	Website        string
	Kind           string
	Status         string
	MunicipalityID string
}

// PayloadBuilder assembles a Payload, applying the per-field rules.
type PayloadBuilder struct {
	p Payload
}

// NewPayloadBuilder starts a payload for the given primary email.
func NewPayloadBuilder(email string) *PayloadBuilder {
	return &PayloadBuilder{p: Payload{
		Email:  strings.TrimSpace(email),
		Status: constants.DefaultContactStatus,
	}}
}

func (b *PayloadBuilder) Name(v string) *PayloadBuilder {
	b.p.Name = strings.TrimSpace(v)
	return b
}

func (b *PayloadBuilder) Position(v string) *PayloadBuilder {
	b.p.Position = strings.TrimSpace(v)
	return b
}

func (b *PayloadBuilder) Address(v string) *PayloadBuilder {
	b.p.Address = strings.TrimSpace(v)
	return b
}

// Email2 sets the second email; values without '@' are dropped.
func (b *PayloadBuilder) Email2(v string) *PayloadBuilder {
	b.p.Email2 = emailOrEmpty(v)
	return b
}

// Email3 sets the third email; values without '@' are dropped.
func (b *PayloadBuilder) Email3(v string) *PayloadBuilder {
	b.p.Email3 = emailOrEmpty(v)
	return b
}

func (b *PayloadBuilder) Phone(v string) *PayloadBuilder {
	b.p.Phone = strings.TrimSpace(v)
	return b
}

func (b *PayloadBuilder) Mobile(v string) *PayloadBuilder {
	b.p.Mobile = strings.TrimSpace(v)
	return b
}

// Website sets the site URL, adding https:// when no scheme is present.
func (b *PayloadBuilder) Website(v string) *PayloadBuilder {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		v = "https://" + v
	}
	b.p.Website = v
	return b
}

// Kind sets the contact classification.
func (b *PayloadBuilder) Kind(v string) *PayloadBuilder {
	b.p.Kind = strings.TrimSpace(v)
	return b
}

// Municipality links the contact to a reference store record.
func (b *PayloadBuilder) Municipality(id string) *PayloadBuilder {
	b.p.MunicipalityID = id
	return b
}

// Build returns the assembled payload.
func (b *PayloadBuilder) Build() Payload {
	return b.p
}

func emailOrEmpty(v string) string {
	v = strings.TrimSpace(v)
	if !strings.Contains(v, "@") {
		return ""
	}
	return v
}
