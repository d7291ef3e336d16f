package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/agentstation/rubrica/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// DecodeText converts file bytes to a string. UTF-8 is tried first, then
// Windows-1252, which covers the Latin-1 exports of Italian spreadsheets.
// A BOM is dropped and line endings are normalized to \n.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return newlines.Replace(string(data)), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", errors.NewParseError("charset", "content", "unsupported text encoding", err)
	}
	return newlines.Replace(string(decoded)), nil
}
