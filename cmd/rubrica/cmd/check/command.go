// Package check provides the check command, which verifies the configured
// credentials without importing anything.
package check

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/rubrica/internal/cmd/application"
	"github.com/agentstation/rubrica/internal/cmd/output"
)

// Status is the outcome of a connection check.
type Status struct {
	Success   bool   `json:"success" yaml:"success"`
	User      string `json:"user,omitempty" yaml:"user,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Assistant bool   `json:"assistant" yaml:"assistant"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Tables implements output.Tabular.
func (s Status) Tables() []output.Data {
	rows := [][]string{
		{"Notion", yesNo(s.Success)},
	}
	if s.Success {
		rows = append(rows, []string{"User", s.User}, []string{"Type", s.Type})
	} else {
		rows = append(rows, []string{"Error", s.Error})
	}
	rows = append(rows, []string{"Assistant", yesNo(s.Assistant)})
	return []output.Data{{Headers: []string{"Check", "Result"}, Rows: rows}}
}

func yesNo(b bool) string {
	if b {
		return "ok"
	}
	return "unavailable"
}

// NewCommand creates the check command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Aliases: []string{"test-connection"},
		Short:   "Verify the Notion credential and report the assistant status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := Run(cmd, app)
			if ferr := output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(cmd.OutOrStdout(), status); ferr != nil {
				return ferr
			}
			return err
		},
	}
}

// Run performs the check. The returned error is the connection failure, if any.
func Run(cmd *cobra.Command, app application.Application) (Status, error) {
	var status Status

	if res, err := app.Resolver(); err == nil && res != nil {
		status.Assistant = res.HasSuggester()
	}

	ws, err := app.Workspace()
	if err != nil {
		status.Error = err.Error()
		return status, err
	}
	user, err := ws.Me(cmd.Context())
	if err != nil {
		status.Error = err.Error()
		return status, err
	}

	app.Logger().Info().Str("user", user.Name).Msg("Connection OK")
	status.Success = true
	status.User = user.Name
	status.Type = user.Type
	return status, nil
}
