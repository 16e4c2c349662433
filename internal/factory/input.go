package factory

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// Input describes one input file and, for cat and shuffle, the pages taken
// from it. Empty strings mean "not set".
//
// In YAML an Input may be written as a bare path:
//
//	inputs:
//	  - a.pdf
//	  - filepath: b.pdf
//	    password: secret
//	    start_page: "2"
//	    end_page: end
type Input struct {
	FilePath  string `yaml:"filepath" json:"filepath"`
	Password  string `yaml:"password,omitempty" json:"password,omitempty"`
	StartPage string `yaml:"start_page,omitempty" json:"start_page,omitempty"`
	EndPage   string `yaml:"end_page,omitempty" json:"end_page,omitempty"`
	Qualifier string `yaml:"qualifier,omitempty" json:"qualifier,omitempty"`
	Rotation  string `yaml:"rotation,omitempty" json:"rotation,omitempty"`
}

// Path returns an Input for a bare file path.
func Path(p string) Input {
	return Input{FilePath: p}
}

// UnmarshalYAML accepts either a scalar path or a mapping.
func (in *Input) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var p string
		if err := node.Decode(&p); err != nil {
			return err
		}
		*in = Input{FilePath: p}
		return nil
	}
	type plain Input
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*in = Input(p)
	return nil
}

// HandleFor returns the handle of the input at index: AA, AB, ... AZ, BA, ...
// wrapping after ZZ.
func HandleFor(index int) string {
	return string([]byte{
		byte('A' + (index/26)%26),
		byte('A' + index%26),
	})
}

func (in Input) inputFile(index int) (*pdftk.InputFile, error) {
	if err := checkPath(fmt.Sprintf("filepath for input %d", index), in.FilePath); err != nil {
		return nil, err
	}
	if in.Password != "" {
		return pdftk.NewProtectedInputFile(in.FilePath, HandleFor(index), in.Password)
	}
	return pdftk.NewInputFile(in.FilePath, HandleFor(index))
}

func (in Input) pageRange(handle string) (*pdftk.PageRange, error) {
	pr, err := pdftk.NewPageRange(handle)
	if err != nil {
		return nil, err
	}
	if err := pr.SetStartPage(in.StartPage); err != nil {
		return nil, err
	}
	if err := pr.SetEndPage(in.EndPage); err != nil {
		return nil, err
	}
	q, err := pdftk.ParseQualifier(in.Qualifier)
	if err != nil {
		return nil, err
	}
	if err := pr.SetQualifier(q); err != nil {
		return nil, err
	}
	r, err := pdftk.ParseRotation(in.Rotation)
	if err != nil {
		return nil, err
	}
	if err := pr.SetRotation(r); err != nil {
		return nil, err
	}
	return pr, nil
}
