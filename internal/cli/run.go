package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/slurpy/internal/job"
)

func loadJobs(paths []string) ([]job.Job, error) {
	var jobs []job.Job
	for _, p := range paths {
		found, err := job.LoadFile(p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, found...)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no jobs in %v", paths)
	}
	return jobs, nil
}

func (a *App) runCommand() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Run the jobs in YAML or Starlark job files",
		Long: `Run every job in the given files in order, stopping at the first failure.
Files ending in .star or .sky are Starlark scripts; anything else is YAML.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := loadJobs(args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("overwrite") {
				a.exec.Overwrite = overwrite
			}
			a.openAudit()

			out := cmd.OutOrStdout()
			for i := range jobs {
				j := &jobs[i]
				res, err := a.exec.Run(cmd.Context(), j)
				if err != nil {
					return fmt.Errorf("%s: %w", j.Label(), err)
				}
				if res.Stdout != "" {
					fmt.Fprint(out, res.Stdout)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: ok (%s)\n", j.Label(), res.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing output files (default from config)")
	return cmd
}

func (a *App) printCommand() *cobra.Command {
	var showSecrets bool
	cmd := &cobra.Command{
		Use:   "print FILE...",
		Short: "Print the pdftk command for each job without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := loadJobs(args)
			if err != nil {
				return err
			}
			for i := range jobs {
				line, err := a.exec.Command(&jobs[i], showSecrets)
				if err != nil {
					return fmt.Errorf("%s: %w", jobs[i].Label(), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print passwords instead of ***")
	return cmd
}
