// Package importcsv provides the import command, which runs a batch import
// from a local CSV or XLSX file.
package importcsv

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/agentstation/rubrica/internal/cmd/application"
	"github.com/agentstation/rubrica/internal/cmd/output"
	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/internal/importer"
	"github.com/agentstation/rubrica/internal/ingest"
	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
)

// NewCommand creates the import command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import contacts from a CSV or XLSX file",
		Long: `Import every row of FILE into the Notion contacts database.

Columns are mapped to contact roles with --map role=Column. The email role
is mandatory; the other roles are:

  email2 email3 nome carica indirizzo telefono cellulare sito tipo comune

Use "-" as FILE to read from standard input.`,
		Example: `  rubrica import contatti.csv --map email=Email --map comune=Comune --map nome="Nome e cognome"
  rubrica import elenco.xlsx -m email=PEC,comune=Città -o yaml --report report.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, args[0])
		},
	}

	cmd.Flags().StringToStringP("map", "m", nil, "role=Column mapping (repeatable)")
	cmd.Flags().String("report", "", "write the full result to this file (.json, .yaml)")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, path string) error {
	raw, err := cmd.Flags().GetStringToString("map")
	if err != nil {
		return err
	}
	mapping, err := contact.NewFieldMapping(raw)
	if err != nil {
		return err
	}
	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	rows, format, err := ingest.ParseBytes(data)
	if err != nil {
		return err
	}
	app.Logger().Debug().Str("file", path).Str("format", string(format)).Int("rows", len(rows)).Msg("Input parsed")

	imp, err := app.Importer()
	if err != nil {
		return err
	}

	result, runErr := imp.Run(cmd.Context(), rows, mapping)
	if result == nil {
		return runErr
	}

	if reportPath != "" {
		if err := writeReport(reportPath, result); err != nil {
			return err
		}
	}

	outFormat := output.DetectFormat(app.OutputFormat())
	var view any = result
	if outFormat == output.FormatTable {
		view = report{result}
	}
	if err := output.NewFormatter(outFormat).Format(cmd.OutOrStdout(), view); err != nil {
		return err
	}
	return runErr
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.WrapIO("read", "stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

func writeReport(path string, result *importer.Result) error {
	var buf bytes.Buffer
	if err := output.NewFormatter(output.FormatFromPath(path)).Format(&buf, result); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// report renders an import result as tables.
type report struct {
	*importer.Result
}

// Tables implements output.Tabular.
func (r report) Tables() []output.Data {
	right := []tw.Align{tw.AlignLeft, tw.AlignRight}
	tables := []output.Data{{
		Title:   "Import " + r.RunID,
		Headers: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Rows", strconv.Itoa(r.TotalRows)},
			{"Batches", strconv.Itoa(r.Batches)},
			{"Imported", strconv.Itoa(r.SuccessCount)},
			{"Failed", strconv.Itoa(r.Failed())},
			{"Corrected municipalities", strconv.Itoa(len(r.CorrectedMunicipalities))},
			{"Municipalities not found", strconv.Itoa(len(r.NotFoundMunicipalities))},
		},
		ColumnAlignment: right,
	}}

	if len(r.CorrectedMunicipalities) > 0 {
		t := output.Data{Title: "Corrected municipalities", Headers: []string{"Original", "Corrected"}}
		for _, c := range r.CorrectedMunicipalities {
			t.Rows = append(t.Rows, []string{c.Original, c.Corrected})
		}
		tables = append(tables, t)
	}

	if len(r.Corrections) > 0 {
		t := output.Data{Title: "Automatic corrections", Headers: []string{"Original", "Corrected", "Method", "Time"}}
		for _, c := range r.Corrections {
			t.Rows = append(t.Rows, []string{c.Original, c.Corrected, string(c.Method), c.Timestamp.Time.Format("15:04:05")})
		}
		tables = append(tables, t)
	}

	if len(r.NotFoundMunicipalities) > 0 {
		t := output.Data{Title: "Municipalities not found", Headers: []string{"Name"}}
		for _, name := range r.NotFoundMunicipalities {
			t.Rows = append(t.Rows, []string{name})
		}
		tables = append(tables, t)
	}

	if len(r.Errors) > 0 {
		t := output.Data{Title: "Errors", Headers: []string{"Row", "Error"}}
		for _, e := range r.Errors {
			t.Rows = append(t.Rows, []string{strconv.Itoa(e.Row), e.Error})
		}
		tables = append(tables, t)
	}

	return tables
}

var _ output.Tabular = report{}

