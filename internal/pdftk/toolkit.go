package pdftk

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcelocantos/slurpy/internal/logging"
)

// DefaultBinary is the pdftk executable looked up on PATH.
const DefaultBinary = "pdftk"

const redacted = "***"

// Toolkit assembles one pdftk invocation: the binary, the inputs, one
// operation, the output and the global options. It is not safe for
// concurrent use; build one Toolkit per command.
type Toolkit struct {
	binary    string
	options   Options
	inputs    []*InputFile
	output    string
	operation Operation
	runner    Runner
}

// New creates a Toolkit for the given binary with every option omitted.
func New(binary string) *Toolkit {
	t := &Toolkit{
		binary:  binary,
		options: make(Options, len(registeredOptions)),
	}
	for _, name := range registeredOptions {
		t.options[name] = Omit()
	}
	return t
}

func (t *Toolkit) Binary() string       { return t.binary }
func (t *Toolkit) Output() string       { return t.output }
func (t *Toolkit) Operation() Operation { return t.operation }
func (t *Toolkit) Inputs() []*InputFile { return append([]*InputFile(nil), t.inputs...) }
func (t *Toolkit) Options() Options     { return t.options.Clone() }

func (t *Toolkit) SetBinary(b string) *Toolkit {
	t.binary = b
	return t
}

// SetOption stores the default value of a registered option.
func (t *Toolkit) SetOption(name OptionName, v OptionValue) error {
	if err := checkOption(name); err != nil {
		return err
	}
	t.options[name] = v
	return nil
}

// SetOptions stores every entry of opts. Nothing is stored if any name is
// unregistered.
func (t *Toolkit) SetOptions(opts Options) error {
	for name := range opts {
		if err := checkOption(name); err != nil {
			return err
		}
	}
	for name, v := range opts {
		t.options[name] = v
	}
	return nil
}

// Option returns the stored value of a registered option.
func (t *Toolkit) Option(name OptionName) (OptionValue, error) {
	if err := checkOption(name); err != nil {
		return OptionValue{}, err
	}
	return t.options[name], nil
}

// AddInput appends an input. Handles are not checked for uniqueness.
func (t *Toolkit) AddInput(in *InputFile) *Toolkit {
	t.inputs = append(t.inputs, in)
	return t
}

func (t *Toolkit) SetOperation(op Operation) *Toolkit {
	t.operation = op
	return t
}

func (t *Toolkit) SetOutput(path string) *Toolkit {
	t.output = path
	return t
}

// MergeOptions returns the stored options overlaid with overrides. The
// Toolkit's own options are never modified.
func (t *Toolkit) MergeOptions(overrides Options) (Options, error) {
	merged := t.options.Clone()
	for name, v := range overrides {
		if err := checkOption(name); err != nil {
			return nil, err
		}
		merged[name] = v
	}
	return merged, nil
}

// Command merges overrides onto the stored options and renders the command.
func (t *Toolkit) Command(overrides Options) (string, error) {
	opts, err := t.MergeOptions(overrides)
	if err != nil {
		return "", err
	}
	return t.BuildCommand(opts)
}

// RedactedCommand is Command with input and output passwords masked, for
// logging.
func (t *Toolkit) RedactedCommand(overrides Options) (string, error) {
	opts, err := t.MergeOptions(overrides)
	if err != nil {
		return "", err
	}
	return t.build(opts, true)
}

// BuildCommand renders the full shell command for opts:
//
//	[echo '<stdin>' |] <binary> <H>=<path>... [input_pw <H>=<pw>...] [<op> <'arg'>...] output <path> [<option> [<'value'>...]]...
//
// Input and output paths are inserted verbatim; operation arguments, option
// values and stdin are shell-quoted.
func (t *Toolkit) BuildCommand(opts Options) (string, error) {
	return t.build(opts, false)
}

func (t *Toolkit) build(opts Options, redact bool) (string, error) {
	clause, err := t.clause()
	if err != nil {
		return "", err
	}
	return t.render(clause, opts, redact), nil
}

// render writes the command for an already described operation clause.
func (t *Toolkit) render(clause Clause, opts Options, redact bool) string {
	var cmd strings.Builder
	cmd.WriteString(t.binary)

	var passwords []string
	for _, in := range t.inputs {
		fmt.Fprintf(&cmd, " %s=%s", in.Handle(), in.FilePath())
		if pw, ok := in.Password(); ok {
			if redact {
				pw = redacted
			}
			passwords = append(passwords, in.Handle()+"="+pw)
		}
	}
	if len(passwords) > 0 {
		cmd.WriteString(" input_pw ")
		cmd.WriteString(strings.Join(passwords, " "))
	}

	line := cmd.String()
	if clause.Name != "" {
		line += " " + clause.Name
		if len(clause.Args) > 0 {
			line += " " + shellQuoteAll(clause.Args)
		}
		if clause.HasStdin {
			stdin := clause.Stdin
			if redact {
				stdin = redacted
			}
			line = "echo " + shellQuote(stdin) + " | " + line
		}
	}

	cmd.Reset()
	cmd.WriteString(line)
	cmd.WriteString(" output ")
	cmd.WriteString(t.output)

	for _, name := range registeredOptions {
		v, ok := opts[name]
		if !ok || v.IsOmitted() {
			continue
		}
		cmd.WriteString(" ")
		cmd.WriteString(string(name))
		if v.IsFlag() {
			continue
		}
		args := v.Args()
		if redact && secretOptions[name] {
			for i := range args {
				args[i] = redacted
			}
		}
		cmd.WriteString(" ")
		cmd.WriteString(shellQuoteAll(args))
	}

	logging.Logger().Debug("built pdftk command",
		slog.String("operation", clause.Name),
		slog.Int("inputs", len(t.inputs)),
		slog.Bool("stdin", clause.HasStdin))
	return cmd.String()
}

// clause describes the operation, pointing a fill_form markup with no
// target at the first input.
func (t *Toolkit) clause() (Clause, error) {
	if ff, ok := t.operation.(*FillForm); ok && ff.Form != nil && ff.Target == "" && len(t.inputs) > 0 {
		withTarget := *ff
		withTarget.Target = t.inputs[0].FilePath()
		return Describe(&withTarget)
	}
	return Describe(t.operation)
}
