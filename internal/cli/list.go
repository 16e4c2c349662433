package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/slurpy/internal/factory"
	"github.com/marcelocantos/slurpy/internal/pdftk"
)

func (a *App) listCommand() *cobra.Command {
	var options bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the operations a job may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if options {
				for _, name := range pdftk.RegisteredOptions() {
					fmt.Fprintln(w, name)
				}
				return nil
			}
			for _, op := range factory.Operations() {
				inputs := "one"
				if op.MultiInput {
					inputs = "many"
				}
				fmt.Fprintf(w, "%-22s %-5s %s\n", op.Name, inputs, op.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&options, "options", false, "list the pdftk options instead, in command order")
	return cmd
}
