package pdftk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/marcelocantos/slurpy/internal/logging"
)

// Result describes a successful invocation. Command and Redacted render the
// same operation clause, so a fill_form markup timestamp matches in both.
type Result struct {
	Operation string
	Command   string
	Redacted  string
	Status    int
	Stdout    string
	Stderr    string
	Duration  time.Duration
}

// SetRunner replaces the Runner used by Generate. nil restores the default
// ShellRunner.
func (t *Toolkit) SetRunner(r Runner) *Toolkit {
	t.runner = r
	return t
}

func (t *Toolkit) getRunner() Runner {
	if t.runner == nil {
		return &ShellRunner{}
	}
	return t.runner
}

// Generate checks that inputs and an output are set, prepares the output
// location, then runs the command built from the stored options merged with
// overrides. An existing output file is replaced only when overwrite is true.
func (t *Toolkit) Generate(ctx context.Context, overrides Options, overwrite bool) (*Result, error) {
	if len(t.inputs) == 0 {
		return nil, fmt.Errorf("%w: you must define at least one input file", ErrMissingInput)
	}
	if t.output == "" {
		return nil, fmt.Errorf("%w: you must define an output file", ErrMissingOutput)
	}

	if err := prepareOutput(t.output, overwrite); err != nil {
		return nil, err
	}

	opts, err := t.MergeOptions(overrides)
	if err != nil {
		return nil, err
	}
	clause, err := t.clause()
	if err != nil {
		return nil, err
	}
	command := t.render(clause, opts, false)
	redactedCommand := t.render(clause, opts, true)

	log := logging.Logger()
	log.Info("running pdftk",
		slog.String("operation", clause.Name),
		slog.String("output", t.output))

	start := time.Now()
	res, err := t.getRunner().Run(ctx, command)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}

	log.Info("pdftk finished",
		slog.Int("status", res.Status),
		slog.Duration("duration", duration))

	if err := Classify(res, command); err != nil {
		return nil, err
	}
	if res.Status != 0 {
		log.Warn("pdftk exited non-zero without stderr output; treating as success",
			slog.Int("status", res.Status))
	}

	return &Result{
		Operation: clause.Name,
		Command:   command,
		Redacted:  redactedCommand,
		Status:    res.Status,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		Duration:  duration,
	}, nil
}

// prepareOutput makes sure pdftk can write filename: an existing regular
// file is removed when overwrite is set, anything else in the way is an
// error, and a missing parent directory is created.
func prepareOutput(filename string, overwrite bool) error {
	info, err := os.Stat(filename)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			what := "special file"
			if info.IsDir() {
				what = "directory"
			}
			return fmt.Errorf("%w: the output file %q already exists and it is a %s", ErrOutputOccupied, filename, what)
		}
		if !overwrite {
			return fmt.Errorf("%w: the output file %q already exists", ErrOutputExists, filename)
		}
		if err := os.Remove(filename); err != nil {
			return fmt.Errorf("%w: could not delete already existing output file %q: %v", ErrOutputDelete, filename, err)
		}
		return nil
	case os.IsNotExist(err):
		dir := filepath.Dir(filename)
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("%w: the output file's directory %q could not be created: %v", ErrOutputDirectory, dir, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: stat output %q: %v", ErrResource, filename, err)
	}
}
