// Package notion talks to the Notion API. One database holds the canonical
// municipalities (the reference store), another receives the contacts.
package notion

import (
	"context"
	"net/http"
	"strings"

	"github.com/agentstation/rubrica/internal/config"
	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/internal/resolver"
	"github.com/agentstation/rubrica/internal/transport"
	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
)

const service = "notion"

// Client implements resolver.Lookup and contact.Store over the Notion API.
type Client struct {
	http             *transport.Client
	baseURL          string
	contactsDB       string
	municipalitiesDB string
}

var (
	_ resolver.Lookup = (*Client)(nil)
	_ contact.Store   = (*Client)(nil)
)

// New creates a client from the store settings.
func New(cfg config.Notion, opts ...transport.Option) *Client {
	version := cfg.Version
	if version == "" {
		version = constants.NotionVersion
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.NotionAPIURL
	}
	opts = append([]transport.Option{transport.WithHeader("Notion-Version", version)}, opts...)
	return &Client{
		http:             transport.New(service, cfg.Token, &transport.BearerAuth{}, opts...),
		baseURL:          strings.TrimRight(baseURL, "/"),
		contactsDB:       cfg.ContactsDB,
		municipalitiesDB: cfg.MunicipalitiesDB,
	}
}

// ExactQuery returns the municipality whose Name equals name, or nil.
func (c *Client) ExactQuery(ctx context.Context, name string) (*resolver.Municipality, error) {
	found, err := c.queryTitle(ctx, titleFilter{Equals: name}, 1)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

// ContainsQuery returns up to limit municipalities whose Name contains name.
func (c *Client) ContainsQuery(ctx context.Context, name string, limit int) ([]resolver.Municipality, error) {
	return c.queryTitle(ctx, titleFilter{Contains: name}, limit)
}

func (c *Client) queryTitle(ctx context.Context, filter titleFilter, limit int) ([]resolver.Municipality, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LookupTimeout)
	defer cancel()

	body := queryRequest{
		Filter:   propertyFilter{Property: "Name", Title: filter},
		PageSize: limit,
	}
	resp, err := c.http.PostJSON(ctx, c.baseURL+"/v1/databases/"+c.municipalitiesDB+"/query", body)
	if err != nil {
		return nil, err
	}
	var out queryResponse
	if err := transport.DecodeResponse(resp, service, &out); err != nil {
		return nil, err
	}

	municipalities := make([]resolver.Municipality, 0, len(out.Results))
	for _, page := range out.Results {
		title := page.Properties.Name.Title
		if len(title) == 0 || title[0].PlainText == "" {
			continue
		}
		municipalities = append(municipalities, resolver.Municipality{ID: page.ID, Name: title[0].PlainText})
	}
	return municipalities, nil
}

// CreateContact creates a page in the contacts database and returns its id.
func (c *Client) CreateContact(ctx context.Context, p contact.Payload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CreateTimeout)
	defer cancel()

	body := createPageRequest{
		Parent:     parent{DatabaseID: c.contactsDB},
		Properties: contactProperties(p),
	}
	resp, err := c.http.PostJSON(ctx, c.baseURL+"/v1/pages", body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode < 300 {
		_ = resp.Body.Close()
		return "", errors.NewAPIError(service, resp.StatusCode, "HTTP "+resp.Status)
	}
	var page pageResponse
	if err := transport.DecodeResponse(resp, service, &page); err != nil {
		return "", err
	}
	if page.ID == "" {
		return "", errors.NewAPIError(service, resp.StatusCode, "page created without id")
	}
	return page.ID, nil
}

// User is the identity behind the integration token.
type User struct {
	Name string `json:"user"`
	Type string `json:"type"`
}

// Me returns the bot user owning the token, verifying the credential.
func (c *Client) Me(ctx context.Context) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LookupTimeout)
	defer cancel()

	resp, err := c.http.Get(ctx, c.baseURL+"/v1/users/me")
	if err != nil {
		return User{}, err
	}
	var out userResponse
	if err := transport.DecodeResponse(resp, service, &out); err != nil {
		return User{}, err
	}

	u := User{Name: out.Name, Type: out.Type}
	if u.Name == "" {
		u.Name = "Utente sconosciuto"
	}
	if u.Type == "" {
		u.Type = "Unknown"
	}
	return u, nil
}
