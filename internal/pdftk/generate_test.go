package pdftk

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelocantos/slurpy/internal/logging"
)

// recordingRunner returns a canned result and remembers what it was asked
// to run.
type recordingRunner struct {
	result   RunResult
	err      error
	commands []string
}

func (r *recordingRunner) Run(_ context.Context, command string) (RunResult, error) {
	r.commands = append(r.commands, command)
	return r.result, r.err
}

func newGenerateToolkit(t *testing.T, output string, runner Runner) *Toolkit {
	t.Helper()
	in, err := NewInputFile("/in.pdf", "A")
	require.NoError(t, err)
	return New("pdftk").AddInput(in).SetOutput(output).SetOperation(Burst{}).SetRunner(runner)
}

func TestGenerateRequiresInputAndOutput(t *testing.T) {
	r := &recordingRunner{}

	_, err := New("pdftk").SetOutput("/tmp/x.pdf").SetRunner(r).Generate(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.ErrorIs(t, err, ErrState)

	in, _ := NewInputFile("/in.pdf", "A")
	_, err = New("pdftk").AddInput(in).SetRunner(r).Generate(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrMissingOutput)

	assert.Empty(t, r.commands, "nothing runs when preconditions fail")
}

func TestGenerateRunsCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "deeper", "out.pdf")
	r := &recordingRunner{result: RunResult{Stdout: "ok"}}
	tk := newGenerateToolkit(t, out, r)

	res, err := tk.Generate(context.Background(), Options{OptCompress: Flag(true)}, false)
	require.NoError(t, err)
	require.Len(t, r.commands, 1)
	assert.Equal(t, "pdftk A=/in.pdf burst output "+out+" compress", r.commands[0])
	assert.Equal(t, r.commands[0], res.Command)
	assert.Equal(t, "ok", res.Stdout)

	info, err := os.Stat(filepath.Dir(out))
	require.NoError(t, err, "output directory is created")
	assert.True(t, info.IsDir())

	v, _ := tk.Option(OptCompress)
	assert.True(t, v.IsOmitted(), "overrides are not stored")
}

func TestGenerateReportsRedactedCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "filled.pdf")
	in, err := NewProtectedInputFile("/form.pdf", "A", "secret")
	require.NoError(t, err)
	fd, err := NewFormData(Field{Name: "name", Value: "Ada"})
	require.NoError(t, err)
	r := &recordingRunner{}
	tk := New("pdftk").AddInput(in).SetOutput(out).SetOperation(&FillForm{Form: fd}).SetRunner(r)

	res, err := tk.Generate(context.Background(), Options{OptUserPassword: Value("hunter2")}, false)
	require.NoError(t, err)
	require.Len(t, r.commands, 1)
	assert.Equal(t, r.commands[0], res.Command)
	assert.Equal(t, "fill_form", res.Operation)
	assert.Equal(t, "echo '***' | pdftk A=/form.pdf input_pw A=*** fill_form '-' output "+out+" user_pw '***'", res.Redacted)
	assert.NotContains(t, res.Redacted, "secret")
	assert.NotContains(t, res.Redacted, "hunter2")
}

func TestGenerateExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0600))

	r := &recordingRunner{}
	_, err := newGenerateToolkit(t, out, r).Generate(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrOutputExists)
	assert.Empty(t, r.commands)

	_, err = newGenerateToolkit(t, out, r).Generate(context.Background(), nil, true)
	require.NoError(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "existing output is removed before running")
	assert.Len(t, r.commands, 1)
}

func TestGenerateOutputIsDirectory(t *testing.T) {
	dir := t.TempDir()
	r := &recordingRunner{}

	for _, overwrite := range []bool{false, true} {
		_, err := newGenerateToolkit(t, dir, r).Generate(context.Background(), nil, overwrite)
		assert.ErrorIs(t, err, ErrOutputOccupied)
		assert.Contains(t, err.Error(), "directory")
	}
	assert.Empty(t, r.commands)
}

func TestGenerateOutputDirectoryNotCreatable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	_, err := newGenerateToolkit(t, filepath.Join(blocker, "sub", "out.pdf"), &recordingRunner{}).
		Generate(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrOutputDirectory)
	assert.ErrorIs(t, err, ErrResource)
}

func TestGenerateClassification(t *testing.T) {
	tests := []struct {
		name    string
		result  RunResult
		wantErr bool
	}{
		{"success", RunResult{Status: 0}, false},
		{"success with stderr", RunResult{Status: 0, Stderr: "warning"}, false},
		{"nonzero without stderr", RunResult{Status: 3, Stdout: "partial"}, false},
		{"nonzero with stderr", RunResult{Status: 1, Stdout: "out", Stderr: "Error: boom"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.pdf")
			res, err := newGenerateToolkit(t, out, &recordingRunner{result: tt.result}).
				Generate(context.Background(), nil, false)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.result.Status, res.Status)
				return
			}
			var pe *ProcessError
			require.True(t, errors.As(err, &pe))
			assert.ErrorIs(t, err, ErrProcess)
			assert.Equal(t, 1, pe.Status)
			assert.Equal(t, "out", pe.Stdout)
			assert.Equal(t, "Error: boom", pe.Stderr)
			assert.Equal(t, "pdftk A=/in.pdf burst output "+out, pe.Command)
			assert.Contains(t, pe.Error(), "exit status code '1'")
		})
	}
}

func TestGenerateWarnsOnAcceptedNonZero(t *testing.T) {
	old := logging.Logger()
	defer logging.SetLogger(old)
	h := logging.NewBufferedHandler(slog.LevelDebug)
	logging.SetLogger(slog.New(h))

	out := filepath.Join(t.TempDir(), "out.pdf")
	_, err := newGenerateToolkit(t, out, &recordingRunner{result: RunResult{Status: 2}}).
		Generate(context.Background(), nil, false)
	require.NoError(t, err)
	assert.True(t, h.Contains("treating as success"))
	assert.False(t, h.Contains("/in.pdf"), "raw commands are not logged")
}

func TestGenerateRunnerError(t *testing.T) {
	boom := errors.New("no shell")
	out := filepath.Join(t.TempDir(), "out.pdf")
	_, err := newGenerateToolkit(t, out, &recordingRunner{err: boom}).Generate(context.Background(), nil, false)
	assert.ErrorIs(t, err, boom)
}

func TestShellRunner(t *testing.T) {
	if _, err := os.Stat(DefaultShell()); err != nil {
		t.Skip("no shell")
	}
	r := &ShellRunner{}

	res, err := r.Run(context.Background(), "echo 'hello' | cat; echo oops >&2; exit 4")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Status)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)

	res, err = r.Run(context.Background(), "true")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Status)

	_, err = (&ShellRunner{Shell: "/nonexistent/shell"}).Run(context.Background(), "true")
	assert.Error(t, err)
}

func TestShellQuoteRoundTripsThroughShell(t *testing.T) {
	if _, err := os.Stat(DefaultShell()); err != nil {
		t.Skip("no shell")
	}
	input := `it's a "test" $HOME ` + "`x`\n<xml/>"
	res, err := (&ShellRunner{}).Run(context.Background(), "printf %s "+shellQuote(input))
	require.NoError(t, err)
	assert.Equal(t, input, res.Stdout)
}

func TestShellRunnerKeepsBackslashesInEcho(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("no bash")
	}
	value := `<value>C:\new\cfolder\t</value>`
	res, err := (&ShellRunner{}).Run(context.Background(), "echo "+shellQuote(value)+" | cat")
	require.NoError(t, err)
	assert.Equal(t, value+"\n", res.Stdout)
}
