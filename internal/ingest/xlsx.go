package ingest

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/pkg/errors"
)

// ParseXLSX reads the first sheet of a workbook. The first row is the
// header; fully blank rows are skipped.
func ParseXLSX(data []byte) ([]contact.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParseError("xlsx", "content", "cannot open workbook", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewValidationError("content", nil, "workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParseError("xlsx", sheets[0], "cannot read sheet", err)
	}
	if len(records) == 0 {
		return nil, errors.NewValidationError("content", nil, "sheet is empty")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []contact.Row
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, toRow(header, record))
	}
	if len(rows) == 0 {
		return nil, errors.NewValidationError("content", nil, "sheet has no data rows")
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
