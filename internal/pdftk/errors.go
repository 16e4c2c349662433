package pdftk

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package wraps exactly one.
var (
	ErrValidation = errors.New("validation error")
	ErrState      = errors.New("state error")
	ErrResource   = errors.New("resource error")
	ErrProcess    = errors.New("process error")
)

// Validation errors are raised at the point of the offending mutation.
var (
	ErrInvalidHandle      = fmt.Errorf("%w: invalid handle", ErrValidation)
	ErrInvalidPage        = fmt.Errorf("%w: invalid page", ErrValidation)
	ErrInvalidQualifier   = fmt.Errorf("%w: invalid qualifier", ErrValidation)
	ErrInvalidRotation    = fmt.Errorf("%w: invalid rotation", ErrValidation)
	ErrUnknownOption      = fmt.Errorf("%w: unknown option", ErrValidation)
	ErrInvalidOptionValue = fmt.Errorf("%w: invalid option value", ErrValidation)
	ErrDuplicateField     = fmt.Errorf("%w: duplicate field", ErrValidation)
	ErrUnknownField       = fmt.Errorf("%w: unknown field", ErrValidation)
	ErrUnknownOperation   = fmt.Errorf("%w: unknown operation", ErrValidation)
	ErrInvalidEncoding    = fmt.Errorf("%w: invalid encoding", ErrValidation)
)

// State errors are raised by Generate before anything is executed.
var (
	ErrMissingInput   = fmt.Errorf("%w: missing input", ErrState)
	ErrMissingOutput  = fmt.Errorf("%w: missing output", ErrState)
	ErrOutputOccupied = fmt.Errorf("%w: output occupied", ErrState)
	ErrOutputExists   = fmt.Errorf("%w: output exists", ErrState)
)

// Resource errors come from preparing the output location.
var (
	ErrOutputDirectory = fmt.Errorf("%w: output directory", ErrResource)
	ErrOutputDelete    = fmt.Errorf("%w: output delete", ErrResource)
)

// ProcessError reports a pdftk run that exited non-zero and wrote to stderr.
// It carries everything needed to diagnose the failure.
type ProcessError struct {
	Status  int
	Stdout  string
	Stderr  string
	Command string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("exit status code '%d' says something went wrong:\nstderr: %q\nstdout: %q\ncommand: %s",
		e.Status, e.Stderr, e.Stdout, e.Command)
}

// Is makes errors.Is(err, ErrProcess) hold for every *ProcessError.
func (e *ProcessError) Is(target error) bool {
	return target == ErrProcess
}
