package job

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/marcelocantos/slurpy/internal/audit"
	"github.com/marcelocantos/slurpy/internal/factory"
	"github.com/marcelocantos/slurpy/internal/logging"
	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// Executor builds and runs jobs against one configuration.
type Executor struct {
	Factory *factory.Factory
	// Defaults are stored on every toolkit before the job's options.
	Defaults pdftk.Options
	// Overwrite applies to jobs that do not set overwrite themselves.
	Overwrite bool
	// Runner runs commands; nil means a ShellRunner.
	Runner pdftk.Runner
	// Audit records every invocation when non-nil.
	Audit *audit.Logger
}

func (e *Executor) getFactory() *factory.Factory {
	if e.Factory == nil {
		return factory.New("")
	}
	return e.Factory
}

// Toolkit builds the toolkit for j.
func (e *Executor) Toolkit(j *Job) (*pdftk.Toolkit, error) {
	tk, err := j.Build(e.getFactory(), e.Defaults)
	if err != nil {
		return nil, err
	}
	return tk.SetRunner(e.Runner), nil
}

// Command renders j's command line, with secrets masked unless
// showSecrets is set.
func (e *Executor) Command(j *Job, showSecrets bool) (string, error) {
	tk, err := e.Toolkit(j)
	if err != nil {
		return "", err
	}
	if showSecrets {
		return tk.Command(nil)
	}
	return tk.RedactedCommand(nil)
}

// Run builds j, runs it and records the outcome in the audit log.
func (e *Executor) Run(ctx context.Context, j *Job) (*pdftk.Result, error) {
	tk, err := e.Toolkit(j)
	if err != nil {
		return nil, err
	}

	overwrite := e.Overwrite
	if j.Overwrite != nil {
		overwrite = *j.Overwrite
	}

	logging.Logger().Info("running job", slog.String("job", j.Label()))

	start := time.Now()
	res, runErr := tk.Generate(ctx, nil, overwrite)
	elapsed := time.Since(start)

	if e.Audit != nil {
		if err := e.Audit.Log(e.record(j, tk, res, runErr, elapsed)); err != nil {
			logging.Logger().Error("audit log failed", slog.Any("err", err))
		}
	}
	return res, runErr
}

func (e *Executor) record(j *Job, tk *pdftk.Toolkit, res *pdftk.Result, runErr error, elapsed time.Duration) audit.Record {
	var cmd string
	if res != nil {
		cmd = res.Redacted
	} else if rendered, err := tk.RedactedCommand(nil); err == nil {
		cmd = rendered
	} else {
		logging.Logger().Warn("render command for audit", slog.String("job", j.Label()), slog.Any("err", err))
	}
	inputs := make([]string, 0, len(tk.Inputs()))
	for _, in := range tk.Inputs() {
		inputs = append(inputs, in.FilePath())
	}
	cwd, _ := os.Getwd()

	exitCode := -1
	var pe *pdftk.ProcessError
	switch {
	case res != nil:
		exitCode = res.Status
		elapsed = res.Duration
	case errors.As(runErr, &pe):
		exitCode = pe.Status
	}

	return audit.Record{
		Job:       j.Name,
		Operation: pdftk.OperationName(tk.Operation()),
		Command:   cmd,
		Inputs:    inputs,
		Output:    tk.Output(),
		ExitCode:  exitCode,
		Err:       runErr,
		Duration:  elapsed,
		Cwd:       cwd,
	}
}
