package job

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelocantos/slurpy/internal/audit"
	"github.com/marcelocantos/slurpy/internal/factory"
	"github.com/marcelocantos/slurpy/internal/pdftk"
)

type fakeRunner struct {
	result   pdftk.RunResult
	commands []string
}

func (r *fakeRunner) Run(_ context.Context, command string) (pdftk.RunResult, error) {
	r.commands = append(r.commands, command)
	return r.result, nil
}

func command(t *testing.T, j *Job, defaults pdftk.Options) string {
	t.Helper()
	tk, err := j.Build(factory.New("pdftk"), defaults)
	require.NoError(t, err)
	cmd, err := tk.Command(nil)
	require.NoError(t, err)
	return cmd
}

func TestLoadYAMLSingleJob(t *testing.T) {
	jobs, err := LoadYAML([]byte(`
operation: cat
inputs:
  - a.pdf
  - filepath: b.pdf
    password: pw
    start_page: 2
    end_page: end
output: out.pdf
options:
  compress: true
`))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "cat", jobs[0].Operation)
	assert.Equal(t, "pdftk AA=a.pdf AB=b.pdf input_pw AB=pw cat 'AA' 'AB2-end' output out.pdf compress",
		command(t, &jobs[0], nil))
}

func TestLoadYAMLManyJobs(t *testing.T) {
	jobs, err := LoadYAML([]byte(`
jobs:
  - {operation: burst, inputs: [a.pdf], output: "pg_%02d.pdf"}
  - {operation: dump_data, dump_fields: true, utf8: true, inputs: [a.pdf], output: data.txt}
---
- {operation: unpack_files, inputs: [a.pdf], output: attachments}
---
operation: generate_fdf
inputs: [form.pdf]
output: form.fdf
`))
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	want := []string{
		"pdftk AA=a.pdf burst output pg_%02d.pdf",
		"pdftk AA=a.pdf dump_data_fields_utf8 output data.txt",
		"pdftk AA=a.pdf unpack_files output attachments",
		"pdftk AA=form.pdf generate_fdf output form.fdf",
	}
	for i := range jobs {
		assert.Equal(t, want[i], command(t, &jobs[i], nil))
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	_, err := LoadYAML([]byte("just a string\n"))
	assert.Error(t, err)

	_, err = LoadYAML([]byte("operation: cat\nfields: 3\n"))
	assert.Error(t, err)

	jobs, err := LoadYAML([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestFieldsKeepOrder(t *testing.T) {
	jobs, err := LoadYAML([]byte(`
operation: fill_form
inputs: [form.pdf]
output: filled.pdf
flatten: true
modified: 1700000000
fields:
  zeta: last letter
  alpha: 1
  empty: ~
`))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, Fields{
		{Name: "zeta", Value: "last letter"},
		{Name: "alpha", Value: "1"},
		{Name: "empty", Value: ""},
	}, jobs[0].Fields)

	tk, err := jobs[0].Build(factory.New("pdftk"), nil)
	require.NoError(t, err)
	ff, ok := tk.Operation().(*pdftk.FillForm)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), ff.Modified.Unix())

	cmd, err := tk.Command(nil)
	require.NoError(t, err)
	assert.Contains(t, cmd, `<field name="zeta"><value>last letter</value></field><field name="alpha">`)
	assert.Contains(t, cmd, `<f href="form.pdf" />`)
	assert.Regexp(t, `fill_form '-' output filled.pdf flatten$`, cmd)
}

func TestFieldsAsList(t *testing.T) {
	jobs, err := LoadYAML([]byte(`
operation: fill_form
inputs: [form.pdf]
output: filled.pdf
target: /srv/form.pdf
fields:
  - {name: b, value: "2"}
  - {name: a, value: "1"}
`))
	require.NoError(t, err)
	assert.Equal(t, Fields{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}}, jobs[0].Fields)
	assert.Contains(t, command(t, &jobs[0], nil), `<f href="/srv/form.pdf" />`)
}

func TestBuildErrors(t *testing.T) {
	f := factory.New("pdftk")
	tests := []struct {
		name string
		job  Job
		want error
	}{
		{"no output", Job{Operation: "burst", Inputs: []factory.Input{factory.Path("a.pdf")}}, pdftk.ErrMissingOutput},
		{"no inputs", Job{Operation: "burst", Output: "o"}, pdftk.ErrMissingInput},
		{"unknown op", Job{Operation: "rotate", Inputs: []factory.Input{factory.Path("a.pdf")}, Output: "o"}, pdftk.ErrUnknownOperation},
		{"too many inputs", Job{Operation: "burst", Inputs: []factory.Input{factory.Path("a"), factory.Path("b")}, Output: "o"}, pdftk.ErrValidation},
		{"unknown option", Job{Operation: "burst", Inputs: []factory.Input{factory.Path("a")}, Output: "o", Options: map[string]any{"turbo": true}}, pdftk.ErrUnknownOption},
		{"fill form without data", Job{Operation: "fill_form", Inputs: []factory.Input{factory.Path("a")}, Output: "o"}, pdftk.ErrValidation},
		{"fill form with both", Job{Operation: "fill_form", Inputs: []factory.Input{factory.Path("a")}, Output: "o", DataFile: "d.fdf", Fields: Fields{{Name: "x", Value: "y"}}}, pdftk.ErrValidation},
		{"duplicate field", Job{Operation: "fill_form", Inputs: []factory.Input{factory.Path("a")}, Output: "o", Fields: Fields{{Name: "x"}, {Name: "x"}}}, pdftk.ErrDuplicateField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.job.Build(f, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildOptionLayers(t *testing.T) {
	defaults := pdftk.Options{
		pdftk.OptCompress:      pdftk.Flag(true),
		pdftk.OptOwnerPassword: pdftk.Value("default"),
	}
	j := &Job{
		Operation: "fill_form",
		Inputs:    []factory.Input{factory.Path("f.pdf")},
		Output:    "o.pdf",
		DataFile:  "d.fdf",
		Flatten:   true,
		Options:   map[string]any{"owner_pw": "mine", "compress": false},
	}
	assert.Equal(t, "pdftk AA=f.pdf fill_form 'd.fdf' output o.pdf owner_pw 'mine' flatten", command(t, j, defaults))
}

func TestVariantsFromJobFlags(t *testing.T) {
	in := []factory.Input{factory.Path("in.pdf")}
	page := 1
	tests := []struct {
		job  Job
		want string
	}{
		{Job{Operation: "background", Background: "bg.pdf", Multi: true}, "multibackground 'bg.pdf'"},
		{Job{Operation: "multistamp", Stamp: "s.pdf"}, "multistamp 's.pdf'"},
		{Job{Operation: "stamp", Stamp: "s.pdf"}, "stamp 's.pdf'"},
		{Job{Operation: "update_info", DataFile: "i.txt", UTF8: true}, "update_info_utf8 'i.txt'"},
		{Job{Operation: "dump_data_fields"}, "dump_data_fields"},
		{Job{Operation: "attach_files", Files: []string{"x.txt"}, ToPage: &page}, "attach_files 'x.txt' 'to_page' '1'"},
	}
	for _, tt := range tests {
		tt.job.Inputs = in
		tt.job.Output = "o.pdf"
		assert.Equal(t, "pdftk AA=in.pdf "+tt.want+" output o.pdf", command(t, &tt.job, nil))
	}
}

func TestLoadStarlark(t *testing.T) {
	src := `
parts = ["intro.pdf", "body.pdf", "appendix.pdf"]

job(
    name = "book",
    operation = "cat",
    inputs = [{"filepath": p, "start_page": 1, "end_page": "end"} for p in parts],
    output = "book.pdf",
    options = {"allow": ["Printing"], "compress": True},
)

job(
    operation = "fill_form",
    inputs = ["form.pdf"],
    output = "filled.pdf",
    fields = {"second": "2", "first": handle(26)},
    modified = 42,
)

print("declared", len(parts), "parts")
`
	jobs, err := LoadStarlark("book.star", []byte(src))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "book", jobs[0].Name)
	assert.Equal(t,
		"pdftk AA=intro.pdf AB=body.pdf AC=appendix.pdf cat 'AA1-end' 'AB1-end' 'AC1-end' output book.pdf allow 'Printing' compress",
		command(t, &jobs[0], nil))

	assert.Equal(t, Fields{{Name: "second", Value: "2"}, {Name: "first", Value: "BA"}}, jobs[1].Fields)
	assert.Equal(t, int64(42), jobs[1].Modified)
}

func TestLoadStarlarkErrors(t *testing.T) {
	_, err := LoadStarlark("bad.star", []byte(`job("cat")`))
	assert.ErrorContains(t, err, "keyword arguments only")

	_, err = LoadStarlark("bad.star", []byte(`job(operation = "cat", inputs = [{1: "x"}])`))
	assert.ErrorContains(t, err, "not a string")

	_, err = LoadStarlark("bad.star", []byte(`handle(-1)`))
	assert.ErrorContains(t, err, "negative index")

	_, err = LoadStarlark("bad.star", []byte(`job(operation = "cat", output = set())`))
	assert.Error(t, err)

	_, err = LoadStarlark("bad.star", []byte(`this is not starlark`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "jobs.yaml")
	star := filepath.Join(dir, "jobs.star")
	require.NoError(t, os.WriteFile(yml, []byte("operation: burst\ninputs: [a.pdf]\noutput: o\n"), 0600))
	require.NoError(t, os.WriteFile(star, []byte(`job(operation = "burst", inputs = ["a.pdf"], output = "o")`), 0600))

	a, err := LoadFile(yml)
	require.NoError(t, err)
	b, err := LoadFile(star)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestExecutorRun(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "audit.jsonl")
	logger, err := audit.NewLogger(logPath)
	require.NoError(t, err)

	runner := &fakeRunner{}
	e := &Executor{
		Factory:  factory.New("pdftk"),
		Defaults: pdftk.Options{pdftk.OptCompress: pdftk.Flag(true)},
		Runner:   runner,
		Audit:    logger,
	}
	out := filepath.Join(dir, "out", "merged.pdf")
	j := &Job{
		Name:      "merge",
		Operation: "cat",
		Inputs:    []factory.Input{{FilePath: "/a.pdf", Password: "secret"}},
		Output:    out,
		Options:   map[string]any{"user_pw": "hunter2"},
	}

	res, err := e.Run(context.Background(), j)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Status)
	require.Len(t, runner.commands, 1)
	assert.Contains(t, runner.commands[0], "input_pw AA=secret")
	assert.Contains(t, runner.commands[0], "user_pw 'hunter2' compress")

	// The output file exists now; without overwrite a second run refuses.
	require.NoError(t, os.WriteFile(out, []byte("pdf"), 0600))
	_, err = e.Run(context.Background(), j)
	assert.ErrorIs(t, err, pdftk.ErrOutputExists)

	yes := true
	j.Overwrite = &yes
	_, err = e.Run(context.Background(), j)
	require.NoError(t, err)

	n, err := audit.Verify(logPath)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := audit.Tail(logPath, 3)
	require.NoError(t, err)
	assert.Equal(t, "merge", entries[0].Job)
	assert.Equal(t, "cat", entries[0].Operation)
	assert.Equal(t, []string{"/a.pdf"}, entries[0].Inputs)
	assert.Equal(t, 0, entries[0].ExitCode)
	assert.NotContains(t, entries[0].Command, "secret")
	assert.NotContains(t, entries[0].Command, "hunter2")
	assert.Equal(t, -1, entries[1].ExitCode)
	assert.Contains(t, entries[1].Error, "already exists")
}

func TestExecutorRunProcessFailure(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "audit.jsonl")
	logger, err := audit.NewLogger(logPath)
	require.NoError(t, err)

	e := &Executor{
		Runner: &fakeRunner{result: pdftk.RunResult{Status: 1, Stderr: "Error: Unable to find file."}},
		Audit:  logger,
	}
	j := &Job{Operation: "burst", Inputs: []factory.Input{factory.Path("/nope.pdf")}, Output: filepath.Join(dir, "pg_%d.pdf")}

	_, err = e.Run(context.Background(), j)
	assert.ErrorIs(t, err, pdftk.ErrProcess)

	entries, err := audit.Tail(logPath, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ExitCode)
	assert.Contains(t, entries[0].Error, "Unable to find file")
}

func TestExecutorRejectsShellInPaths(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "pwned")
	inject := "a.pdf; touch " + marker + ";"
	out := filepath.Join(dir, "out.pdf")
	logPath := filepath.Join(dir, "audit.jsonl")
	logger, err := audit.NewLogger(logPath)
	require.NoError(t, err)
	e := &Executor{Factory: factory.New("true"), Audit: logger}

	docs := map[string]string{
		"input":       "operation: burst\ninputs: [\"" + inject + "\"]\noutput: " + out + "\n",
		"output":      "operation: burst\ninputs: [in.pdf]\noutput: \"" + out + "; touch " + marker + "\"\n",
		"subshell":    "operation: burst\ninputs: [\"$(touch " + marker + ")\"]\noutput: " + out + "\n",
		"background":  "operation: background\ninputs: [in.pdf]\nbackground: \"" + inject + "\"\noutput: " + out + "\n",
		"stamp":       "operation: stamp\ninputs: [in.pdf]\nstamp: \"" + inject + "\"\noutput: " + out + "\n",
		"data file":   "operation: update_info\ninputs: [in.pdf]\ndata_file: \"" + inject + "\"\noutput: " + out + "\n",
		"attachments": "operation: attach_files\ninputs: [in.pdf]\nfiles: [ok.txt, \"" + inject + "\"]\noutput: " + out + "\n",
		"newline":     "operation: burst\ninputs: [\"a.pdf\\ntouch " + marker + "\"]\noutput: " + out + "\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			jobs, err := LoadYAML([]byte(doc))
			require.NoError(t, err)
			require.Len(t, jobs, 1)

			_, err = e.Run(context.Background(), &jobs[0])
			assert.ErrorIs(t, err, pdftk.ErrValidation)
			_, err = e.Command(&jobs[0], true)
			assert.ErrorIs(t, err, pdftk.ErrValidation)
		})
	}

	_, err = os.Stat(marker)
	assert.True(t, os.IsNotExist(err), "injected command must not run")
	entries, err := audit.Tail(logPath, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected jobs never reach pdftk")
}

func TestExecutorCommand(t *testing.T) {
	e := &Executor{Factory: factory.New("/usr/bin/pdftk")}
	j := &Job{Operation: "burst", Inputs: []factory.Input{{FilePath: "a.pdf", Password: "pw"}}, Output: "o"}

	redacted, err := e.Command(j, false)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/pdftk AA=a.pdf input_pw AA=*** burst output o", redacted)

	full, err := e.Command(j, true)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/pdftk AA=a.pdf input_pw AA=pw burst output o", full)
}
