// Package job reads declarative pdftk jobs from YAML documents or Starlark
// scripts and turns them into toolkits.
package job

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/slurpy/internal/factory"
	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// Job is one pdftk invocation.
//
//	operation: fill_form
//	inputs: [form.pdf]
//	output: out/filled.pdf
//	flatten: true
//	fields:
//	  name: Ada
//	  city: London
//	options:
//	  owner_pw: s3cret
//	  allow: [Printing]
type Job struct {
	Name      string          `yaml:"name,omitempty"`
	Operation string          `yaml:"operation"`
	Inputs    []factory.Input `yaml:"inputs"`
	Output    string          `yaml:"output"`
	Options   map[string]any  `yaml:"options,omitempty"`
	Overwrite *bool           `yaml:"overwrite,omitempty"`

	// background, stamp
	Background string `yaml:"background,omitempty"`
	Stamp      string `yaml:"stamp,omitempty"`
	Multi      bool   `yaml:"multi,omitempty"`

	// fill_form, update_info
	DataFile string `yaml:"data_file,omitempty"`
	Fields   Fields `yaml:"fields,omitempty"`
	Flatten  bool   `yaml:"flatten,omitempty"`
	Target   string `yaml:"target,omitempty"`
	Modified int64  `yaml:"modified,omitempty"` // unix seconds; 0 means now
	Encoding string `yaml:"encoding,omitempty"`

	// dump_data, update_info
	DumpFields bool `yaml:"dump_fields,omitempty"`
	UTF8       bool `yaml:"utf8,omitempty"`

	// attach_files
	Files  []string `yaml:"files,omitempty"`
	ToPage *int     `yaml:"to_page,omitempty"`
}

// Label names the job in logs and errors.
func (j *Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Operation + " -> " + j.Output
}

// Fields is an ordered list of form values. In YAML it is written either as
// a mapping, whose key order is kept, or as a list of {name, value} pairs.
type Fields []pdftk.Field

func (fs *Fields) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Fields, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: field %q: value must be a scalar", v.Line, k.Value)
			}
			out = append(out, pdftk.Field{Name: k.Value, Value: scalarValue(v)})
		}
		*fs = out
		return nil
	case yaml.SequenceNode:
		var list []pdftk.Field
		if err := node.Decode(&list); err != nil {
			return err
		}
		*fs = list
		return nil
	default:
		return fmt.Errorf("line %d: fields must be a mapping or a list", node.Line)
	}
}

func scalarValue(n *yaml.Node) string {
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

// Build turns the job into a toolkit using f. defaults are stored first,
// then whatever the operation itself sets (flatten for fill_form), then the
// job's own options, so later layers win.
func (j *Job) Build(f *factory.Factory, defaults pdftk.Options) (*pdftk.Toolkit, error) {
	if j.Output == "" {
		return nil, fmt.Errorf("%w: job %q has no output", pdftk.ErrMissingOutput, j.Label())
	}
	info, err := factory.LookupOperation(j.Operation)
	if err != nil {
		return nil, err
	}
	if len(j.Inputs) == 0 {
		return nil, fmt.Errorf("%w: job %q has no inputs", pdftk.ErrMissingInput, j.Label())
	}
	if !info.MultiInput && len(j.Inputs) > 1 {
		return nil, fmt.Errorf("%w: %s takes exactly one input, got %d", pdftk.ErrValidation, j.Operation, len(j.Inputs))
	}
	opts, err := pdftk.ParseOptions(j.Options)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", j.Label(), err)
	}

	tk, err := j.build(f, info)
	if err != nil {
		return nil, err
	}

	fromOperation := tk.Options()
	if err := tk.SetOptions(defaults); err != nil {
		return nil, err
	}
	for name, v := range fromOperation {
		if v.IsOmitted() {
			continue
		}
		if err := tk.SetOption(name, v); err != nil {
			return nil, err
		}
	}
	if err := tk.SetOptions(opts); err != nil {
		return nil, fmt.Errorf("job %q: %w", j.Label(), err)
	}
	return tk, nil
}

func (j *Job) build(f *factory.Factory, info factory.OperationInfo) (*pdftk.Toolkit, error) {
	in := j.Inputs[0]
	switch info.Name {
	case "cat":
		return f.Cat(j.Inputs, j.Output)
	case "shuffle":
		return f.Shuffle(j.Inputs, j.Output)
	case "background", "multibackground":
		return f.Background(in, j.Background, j.Output, j.Multi || info.Name == "multibackground")
	case "stamp", "multistamp":
		return f.Stamp(in, j.Stamp, j.Output, j.Multi || info.Name == "multistamp")
	case "burst":
		return f.Burst(in, j.Output)
	case "generate_fdf":
		return f.GenerateFDF(in, j.Output)
	case "fill_form":
		return j.fillForm(f, in)
	case "dump_data", "dump_data_fields", "dump_data_utf8", "dump_data_fields_utf8":
		fields := j.DumpFields || info.Name == "dump_data_fields" || info.Name == "dump_data_fields_utf8"
		utf8 := j.UTF8 || info.Name == "dump_data_utf8" || info.Name == "dump_data_fields_utf8"
		return f.DumpData(in, j.Output, fields, utf8)
	case "unpack_files":
		return f.UnpackFiles(in, j.Output)
	case "update_info", "update_info_utf8":
		return f.UpdateInfo(in, j.DataFile, j.Output, j.UTF8 || info.Name == "update_info_utf8")
	case "attach_files":
		return f.AttachFiles(in, j.Files, j.Output, j.ToPage)
	default:
		return nil, fmt.Errorf("%w: %q", pdftk.ErrUnknownOperation, info.Name)
	}
}

func (j *Job) fillForm(f *factory.Factory, in factory.Input) (*pdftk.Toolkit, error) {
	if len(j.Fields) == 0 {
		if j.DataFile == "" {
			return nil, fmt.Errorf("%w: fill_form needs data_file or fields", pdftk.ErrValidation)
		}
		return f.FillForm(in, j.DataFile, j.Output, j.Flatten)
	}
	if j.DataFile != "" {
		return nil, fmt.Errorf("%w: fill_form takes data_file or fields, not both", pdftk.ErrValidation)
	}

	form, err := pdftk.NewFormData(j.Fields...)
	if err != nil {
		return nil, err
	}
	tk, err := f.FillFormData(in, form, j.Output, j.Flatten)
	if err != nil {
		return nil, err
	}
	op := tk.Operation().(*pdftk.FillForm)
	op.Target = j.Target
	op.Encoding = j.Encoding
	if j.Modified != 0 {
		op.Modified = time.Unix(j.Modified, 0)
	}
	return tk, nil
}
