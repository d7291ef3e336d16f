package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/rubrica/cmd/rubrica/cmd/check"
	"github.com/agentstation/rubrica/cmd/rubrica/cmd/importcsv"
	"github.com/agentstation/rubrica/cmd/rubrica/cmd/resolve"
	"github.com/agentstation/rubrica/cmd/rubrica/cmd/serve"
	"github.com/agentstation/rubrica/cmd/rubrica/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(withGroup(serve.NewCommand(a), "core"))
	rootCmd.AddCommand(withGroup(importcsv.NewCommand(a), "core"))

	rootCmd.AddCommand(withGroup(check.NewCommand(a), "diagnostics"))
	rootCmd.AddCommand(withGroup(resolve.NewCommand(a), "diagnostics"))

	rootCmd.AddCommand(version.NewCommand(a))
}

func withGroup(cmd *cobra.Command, group string) *cobra.Command {
	cmd.GroupID = group
	return cmd
}
