// Package resolve provides the resolve command, which runs the municipality
// resolution chain for a single name.
package resolve

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/rubrica/pkg/errors"

	"github.com/agentstation/rubrica/internal/cmd/application"
	"github.com/agentstation/rubrica/internal/cmd/output"
	"github.com/agentstation/rubrica/internal/resolver"
)

// Result is the printable outcome of a resolution.
type Result struct {
	Input       string                `json:"input" yaml:"input"`
	Found       bool                  `json:"found" yaml:"found"`
	ID          string                `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string                `json:"name,omitempty" yaml:"name,omitempty"`
	Corrected   bool                  `json:"corrected" yaml:"corrected"`
	Method      resolver.Method       `json:"method,omitempty" yaml:"method,omitempty"`
	Corrections []resolver.Correction `json:"corrections,omitempty" yaml:"corrections,omitempty"`
}

// Tables implements output.Tabular.
func (r Result) Tables() []output.Data {
	rows := [][]string{{"Input", r.Input}}
	if !r.Found {
		rows = append(rows, []string{"Found", "no"})
	} else {
		rows = append(rows,
			[]string{"Found", "yes"},
			[]string{"Name", r.Name},
			[]string{"ID", r.ID},
			[]string{"Method", string(r.Method)},
		)
		if r.Corrected {
			rows = append(rows, []string{"Corrected", "yes"})
		}
	}
	return []output.Data{{Headers: []string{"Field", "Value"}, Rows: rows}}
}

// NewCommand creates the resolve command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve NAME...",
		Short: "Resolve a municipality name against the reference database",
		Long: `Resolve runs the lookup chain used during imports for a single name:
cache, exact match, fuzzy match, email-derived hint and assistant suggestion.`,
		Example: `  rubrica resolve Barzano
  rubrica resolve "S. Giovanni" --email sindaco@comune.sangiovanni.it`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := cmd.Flags().GetString("email")
			if err != nil {
				return err
			}
			result, err := Run(cmd, app, strings.Join(args, " "), email)
			if err != nil {
				return err
			}
			return output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().String("email", "", "email address used as a hint")
	return cmd
}

// Run resolves name with a fresh session.
func Run(cmd *cobra.Command, app application.Application, name, email string) (Result, error) {
	res, err := app.Resolver()
	if err != nil {
		return Result{}, err
	}
	if res == nil {
		return Result{}, errors.NewConfigError("resolver", "not configured", nil)
	}

	sess := resolver.NewSession()
	outcome, err := res.Resolve(cmd.Context(), sess, name, email)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Input:       strings.TrimSpace(name),
		Found:       outcome.Found(),
		Corrected:   outcome.Corrected,
		Method:      outcome.Method,
		Corrections: sess.Ledger.Drain(),
	}
	if outcome.Municipality != nil {
		result.ID = outcome.Municipality.ID
		result.Name = outcome.Municipality.Name
	}
	return result, nil
}
