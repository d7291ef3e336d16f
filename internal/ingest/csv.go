package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/pkg/errors"
)

// ParseCSV reads delimited text with a header line into rows. The
// delimiter is ',' unless the header has more ';' than ','. Header names are
// trimmed; rows shorter than the header simply lack the trailing columns.
func ParseCSV(text string) ([]contact.Row, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("content", nil, "csv is empty")
	}
	if err != nil {
		return nil, csvError(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []contact.Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		rows = append(rows, toRow(header, record))
	}

	if len(rows) == 0 {
		return nil, errors.NewValidationError("content", nil, "csv has no data rows")
	}
	return rows, nil
}

// toRow zips a record with the header. Blank header cells are skipped.
func toRow(header, record []string) contact.Row {
	row := make(contact.Row, len(header))
	for i, name := range header {
		if name == "" || i >= len(record) {
			continue
		}
		row[name] = record[i]
	}
	return row
}

// sniffDelimiter picks ',' or ';' from the first line, ignoring quoted text.
func sniffDelimiter(text string) rune {
	line, _, _ := strings.Cut(text, "\n")
	var commas, semicolons int
	quoted := false
	for _, c := range line {
		switch c {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				commas++
			}
		case ';':
			if !quoted {
				semicolons++
			}
		}
	}
	if semicolons > commas {
		return ';'
	}
	return ','
}

func csvError(err error) error {
	pe := errors.NewParseError("csv", "content", err.Error(), err)
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		pe.Line = perr.Line
	}
	return pe
}
