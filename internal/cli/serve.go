package cli

import (
	"github.com/spf13/cobra"

	"github.com/marcelocantos/slurpy/internal/logging"
	"github.com/marcelocantos/slurpy/internal/mcpserver"
)

func (a *App) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve build_command and generate as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.openAudit()
			logging.Logger().Info("serving MCP on stdio")
			return mcpserver.New(a.exec, a.Version).ServeStdio()
		},
	}
}
