package job

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads jobs from path. Files ending in .star or .sky are run as
// Starlark scripts; anything else is parsed as YAML.
func LoadFile(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	switch filepath.Ext(path) {
	case ".star", ".sky":
		return LoadStarlark(path, data)
	default:
		jobs, err := LoadYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return jobs, nil
	}
}

// LoadYAML parses one or more YAML documents. Each document is either a
// single job or a mapping with a jobs list.
func LoadYAML(data []byte) ([]Job, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var jobs []Job
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		found, err := decodeDocument(&doc)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, found...)
	}
	return jobs, nil
}

func decodeDocument(doc *yaml.Node) ([]Job, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		var jobs []Job
		if err := root.Decode(&jobs); err != nil {
			return nil, err
		}
		return jobs, nil
	case yaml.MappingNode:
		if hasKey(root, "jobs") {
			var wrapper struct {
				Jobs []Job `yaml:"jobs"`
			}
			if err := root.Decode(&wrapper); err != nil {
				return nil, err
			}
			return wrapper.Jobs, nil
		}
		var j Job
		if err := root.Decode(&j); err != nil {
			return nil, err
		}
		return []Job{j}, nil
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("line %d: expected a job, a list of jobs, or a jobs mapping", root.Line)
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}
