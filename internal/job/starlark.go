package job

import (
	"fmt"
	"log/slog"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/slurpy/internal/factory"
	"github.com/marcelocantos/slurpy/internal/logging"
)

// LoadStarlark runs a Starlark script and collects the jobs it declares.
// Scripts see two builtins:
//
//	job(operation=..., inputs=[...], output=..., ...)  declare a job
//	handle(i)                                          handle of input i ("AA", "AB", ...)
//
// job takes the same keys as a YAML job. print() goes to the log.
func LoadStarlark(filename string, src []byte) ([]Job, error) {
	var jobs []Job

	jobFn := func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: takes keyword arguments only", fn.Name())
		}
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, kv := range kwargs {
			key := string(kv[0].(starlark.String))
			val, err := toNode(kv[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", fn.Name(), key, err)
			}
			node.Content = append(node.Content, scalarNode("!!str", key), val)
		}
		var j Job
		if err := node.Decode(&j); err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name(), err)
		}
		jobs = append(jobs, j)
		return starlark.None, nil
	}

	handleFn := func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var i int
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &i); err != nil {
			return nil, err
		}
		if i < 0 {
			return nil, fmt.Errorf("%s: negative index %d", fn.Name(), i)
		}
		return starlark.String(factory.HandleFor(i)), nil
	}

	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			logging.Logger().Info(msg, slog.String("script", filename))
		},
	}
	predeclared := starlark.StringDict{
		"job":    starlark.NewBuiltin("job", jobFn),
		"handle": starlark.NewBuiltin("handle", handleFn),
	}

	if _, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, predeclared); err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok {
			return nil, fmt.Errorf("%s", evalErr.Backtrace())
		}
		return nil, err
	}
	return jobs, nil
}

// toNode converts a Starlark value into the YAML node a job file would
// contain, keeping dict order.
func toNode(v starlark.Value) (*yaml.Node, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return scalarNode("!!null", "null"), nil
	case starlark.Bool:
		return scalarNode("!!bool", strconv.FormatBool(bool(v))), nil
	case starlark.Int:
		return scalarNode("!!int", v.String()), nil
	case starlark.Float:
		return scalarNode("!!float", strconv.FormatFloat(float64(v), 'g', -1, 64)), nil
	case starlark.String:
		return scalarNode("!!str", string(v)), nil
	case *starlark.List:
		return seqNode(v)
	case starlark.Tuple:
		return seqNode(v)
	case *starlark.Dict:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, item := range v.Items() {
			k, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is not a string", item[0])
			}
			val, err := toNode(item[1])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode("!!str", string(k)), val)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", v.Type())
	}
}

func seqNode(it starlark.Indexable) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for i := 0; i < it.Len(); i++ {
		el, err := toNode(it.Index(i))
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, el)
	}
	return node, nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
