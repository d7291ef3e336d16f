// Package ingest decodes uploaded contact lists into rows. Uploads arrive
// base64 encoded and are either delimited text (CSV with ',' or ';') or an
// XLSX workbook, recognised by its zip signature.
package ingest

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/pkg/errors"
)

// Format identifies the decoded container.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var zipMagic = []byte("PK\x03\x04")

// DecodeBase64 decodes an upload. A data URL prefix is accepted, as are
// unpadded and URL-safe encodings.
func DecodeBase64(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "data:") {
		if i := strings.Index(content, ";base64,"); i >= 0 {
			content = content[i+len(";base64,"):]
		}
	}
	content = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, content)
	if content == "" {
		return nil, errors.NewValidationError("content", nil, "content is required")
	}

	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		data, err := enc.DecodeString(content)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, errors.NewParseError("base64", "content", "invalid base64 content", firstErr)
}

// Parse decodes a base64 upload into rows.
func Parse(content string) ([]contact.Row, Format, error) {
	data, err := DecodeBase64(content)
	if err != nil {
		return nil, "", err
	}
	return ParseBytes(data)
}

// ParseBytes decodes raw file bytes into rows.
func ParseBytes(data []byte) ([]contact.Row, Format, error) {
	if len(data) == 0 {
		return nil, "", errors.NewValidationError("content", nil, "content is empty")
	}
	if bytes.HasPrefix(data, zipMagic) {
		rows, err := ParseXLSX(data)
		return rows, FormatXLSX, err
	}

	text, err := DecodeText(data)
	if err != nil {
		return nil, FormatCSV, err
	}
	rows, err := ParseCSV(text)
	return rows, FormatCSV, err
}
