package notion

import (
	"github.com/agentstation/rubrica/internal/contact"
)

// Property names of the contacts database.
const (
	PropEmail        = "Email primaria"
	PropName         = "Nome e cognome"
	PropPosition     = "Carica"
	PropAddress      = "Indirizzo"
	PropEmail2       = "Email 2"
	PropEmail3       = "Email 3"
	PropPhone        = "Telefono"
	PropMobile       = "Cellulare"
	PropWebsite      = "Sito web"
	PropKind         = "Tipo di contatto"
	PropStatus       = "Status"
	PropMunicipality = "Comune"
)

type titleFilter struct {
	Equals   string `json:"equals,omitempty"`
	Contains string `json:"contains,omitempty"`
}

type propertyFilter struct {
	Property string      `json:"property"`
	Title    titleFilter `json:"title"`
}

type queryRequest struct {
	Filter   propertyFilter `json:"filter"`
	PageSize int            `json:"page_size"`
}

type richText struct {
	PlainText string    `json:"plain_text,omitempty"`
	Text      *textBody `json:"text,omitempty"`
}

type textBody struct {
	Content string `json:"content"`
}

type queryResponse struct {
	Results []struct {
		ID         string `json:"id"`
		Properties struct {
			Name struct {
				Title []richText `json:"title"`
			} `json:"Name"`
		} `json:"properties"`
	} `json:"results"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type pageResponse struct {
	ID string `json:"id"`
}

type userResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// property is one typed Notion property value; exactly one field is set.
type property struct {
	Title       []richText `json:"title,omitempty"`
	RichText    []richText `json:"rich_text,omitempty"`
	Email       string     `json:"email,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	URL         string     `json:"url,omitempty"`
	Select      *option    `json:"select,omitempty"`
	Relation    []relation `json:"relation,omitempty"`
}

type option struct {
	Name string `json:"name"`
}

type relation struct {
	ID string `json:"id"`
}

func text(v string) []richText {
	return []richText{{Text: &textBody{Content: v}}}
}

// contactProperties maps a payload onto the contacts database schema.
// Empty payload fields produce no property.
func contactProperties(p contact.Payload) map[string]property {
	props := map[string]property{
		PropEmail: {Title: text(p.Email)},
	}
	set := func(name, v string, prop property) {
		if v != "" {
			props[name] = prop
		}
	}
	set(PropName, p.Name, property{RichText: text(p.Name)})
	set(PropPosition, p.Position, property{RichText: text(p.Position)})
	set(PropAddress, p.Address, property{RichText: text(p.Address)})
	set(PropEmail2, p.Email2, property{Email: p.Email2})
	set(PropEmail3, p.Email3, property{Email: p.Email3})
	set(PropPhone, p.Phone, property{PhoneNumber: p.Phone})
	set(PropMobile, p.Mobile, property{PhoneNumber: p.Mobile})
	set(PropWebsite, p.Website, property{URL: p.Website})
	set(PropKind, p.Kind, property{Select: &option{Name: p.Kind}})
	set(PropStatus, p.Status, property{Select: &option{Name: p.Status}})
	set(PropMunicipality, p.MunicipalityID, property{Relation: []relation{{ID: p.MunicipalityID}}})
	return props
}
