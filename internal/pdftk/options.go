package pdftk

import (
	"fmt"
	"sort"
	"strconv"
)

// OptionName names one of pdftk's global output options.
type OptionName string

const (
	OptEncrypt40Bit  OptionName = "encrypt_40bit"
	OptEncrypt128Bit OptionName = "encrypt_128bit"
	OptAllow         OptionName = "allow"
	OptOwnerPassword OptionName = "owner_pw"
	OptUserPassword  OptionName = "user_pw"
	OptFlatten       OptionName = "flatten"
	OptCompress      OptionName = "compress"
	OptUncompress    OptionName = "uncompress"
	OptKeepFirstID   OptionName = "keep_first_id"
	OptKeepFinalID   OptionName = "keep_final_id"
	OptDropXFA       OptionName = "drop_xfa"
)

// registeredOptions is the fixed option set, in the order options are
// rendered on the command line.
var registeredOptions = []OptionName{
	OptEncrypt40Bit,
	OptEncrypt128Bit,
	OptAllow,
	OptOwnerPassword,
	OptUserPassword,
	OptFlatten,
	OptCompress,
	OptUncompress,
	OptKeepFirstID,
	OptKeepFinalID,
	OptDropXFA,
}

// secretOptions are masked by RedactedCommand.
var secretOptions = map[OptionName]bool{
	OptOwnerPassword: true,
	OptUserPassword:  true,
}

// RegisteredOptions returns the option names in rendering order.
func RegisteredOptions() []OptionName {
	return append([]OptionName(nil), registeredOptions...)
}

func isRegistered(name OptionName) bool {
	for _, n := range registeredOptions {
		if n == name {
			return true
		}
	}
	return false
}

func checkOption(name OptionName) error {
	if !isRegistered(name) {
		return fmt.Errorf("%w: the option %q does not exist", ErrUnknownOption, string(name))
	}
	return nil
}

type valueKind int

const (
	kindOmit valueKind = iota
	kindFlag
	kindValue
	kindList
)

// OptionValue is the setting of one option: omitted, a bare flag, a single
// argument, or a list of arguments. The zero value is omitted.
type OptionValue struct {
	kind  valueKind
	value string
	list  []string
}

// Omit leaves the option off the command line.
func Omit() OptionValue { return OptionValue{} }

// Flag renders the option as a bare flag when on is true and omits it
// otherwise.
func Flag(on bool) OptionValue {
	if !on {
		return OptionValue{}
	}
	return OptionValue{kind: kindFlag}
}

// Value renders the option followed by one escaped argument.
func Value(s string) OptionValue {
	return OptionValue{kind: kindValue, value: s}
}

// List renders the option followed by each escaped argument.
func List(items ...string) OptionValue {
	return OptionValue{kind: kindList, list: append([]string(nil), items...)}
}

// IsOmitted reports whether the option would be left off the command line.
func (v OptionValue) IsOmitted() bool { return v.kind == kindOmit }

// IsFlag reports whether the option renders as a bare flag.
func (v OptionValue) IsFlag() bool { return v.kind == kindFlag }

// Args returns the arguments rendered after the option name.
func (v OptionValue) Args() []string {
	switch v.kind {
	case kindValue:
		return []string{v.value}
	case kindList:
		return append([]string(nil), v.list...)
	default:
		return nil
	}
}

func (v OptionValue) String() string {
	switch v.kind {
	case kindFlag:
		return "true"
	case kindValue:
		return v.value
	case kindList:
		return fmt.Sprint(v.list)
	default:
		return "<omitted>"
	}
}

// OptionValueOf converts a loosely typed value, as decoded from YAML, JSON
// or a script, into an OptionValue. nil and false omit, true is a flag,
// strings and numbers are single arguments, and lists are argument lists.
func OptionValueOf(v any) (OptionValue, error) {
	switch x := v.(type) {
	case nil:
		return Omit(), nil
	case OptionValue:
		return x, nil
	case bool:
		return Flag(x), nil
	case string:
		return Value(x), nil
	case int:
		return Value(strconv.Itoa(x)), nil
	case int64:
		return Value(strconv.FormatInt(x, 10)), nil
	case float64:
		return Value(strconv.FormatFloat(x, 'f', -1, 64)), nil
	case []string:
		return List(x...), nil
	case []any:
		items := make([]string, 0, len(x))
		for i, item := range x {
			switch s := item.(type) {
			case string:
				items = append(items, s)
			case int:
				items = append(items, strconv.Itoa(s))
			default:
				return OptionValue{}, fmt.Errorf("%w: list element %d has type %T", ErrInvalidOptionValue, i, item)
			}
		}
		return List(items...), nil
	default:
		return OptionValue{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidOptionValue, v)
	}
}

// Options maps registered option names to values. Absent names are omitted.
type Options map[OptionName]OptionValue

// Clone returns an independent copy.
func (o Options) Clone() Options {
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// ParseOptions converts loosely typed settings into Options, validating every
// name. Names are processed in sorted order and the first failure aborts.
func ParseOptions(raw map[string]any) (Options, error) {
	names := make([]string, 0, len(raw))
	for n := range raw {
		names = append(names, n)
	}
	sort.Strings(names)

	opts := make(Options, len(raw))
	for _, n := range names {
		name := OptionName(n)
		if err := checkOption(name); err != nil {
			return nil, err
		}
		v, err := OptionValueOf(raw[n])
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", n, err)
		}
		opts[name] = v
	}
	return opts, nil
}
