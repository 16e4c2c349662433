package pdftk

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is the charset declared by Markup when none is given.
const DefaultEncoding = "UTF-8"

// Field is a single named form value.
type Field struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// FormData holds form field values in insertion order. Fields are added once
// and may then only be changed, never removed.
type FormData struct {
	names  []string
	values map[string]string
}

// NewFormData creates a FormData holding the given fields.
func NewFormData(fields ...Field) (*FormData, error) {
	fd := &FormData{values: make(map[string]string)}
	if err := fd.AddFields(fields); err != nil {
		return nil, err
	}
	return fd, nil
}

func (fd *FormData) HasField(name string) bool {
	_, ok := fd.values[name]
	return ok
}

// AddField adds a new field. It fails if name is already defined.
func (fd *FormData) AddField(name, value string) error {
	if fd.values == nil {
		fd.values = make(map[string]string)
	}
	if fd.HasField(name) {
		return fmt.Errorf("%w: field %q is already defined", ErrDuplicateField, name)
	}
	fd.names = append(fd.names, name)
	fd.values[name] = value
	return nil
}

// SetField changes an existing field. It fails if name is not defined.
func (fd *FormData) SetField(name, value string) error {
	if !fd.HasField(name) {
		return fmt.Errorf("%w: field %q is not defined", ErrUnknownField, name)
	}
	fd.values[name] = value
	return nil
}

// AddFields adds each field in order, stopping at the first failure.
// Fields added before the failure stay added.
func (fd *FormData) AddFields(fields []Field) error {
	for _, f := range fields {
		if err := fd.AddField(f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// SetFields sets each field in order, stopping at the first failure.
func (fd *FormData) SetFields(fields []Field) error {
	for _, f := range fields {
		if err := fd.SetField(f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// Field returns the value of a defined field.
func (fd *FormData) Field(name string) (string, error) {
	if !fd.HasField(name) {
		return "", fmt.Errorf("%w: field %q is not defined", ErrUnknownField, name)
	}
	return fd.values[name], nil
}

// Fields returns a copy of the fields in insertion order.
func (fd *FormData) Fields() []Field {
	out := make([]Field, len(fd.names))
	for i, n := range fd.names {
		out[i] = Field{Name: n, Value: fd.values[n]}
	}
	return out
}

func (fd *FormData) Len() int { return len(fd.names) }

// Markup renders the fields as an XFDF document referring to the PDF at
// target. A zero modified time means now; an empty charset means UTF-8.
// The document is encoded in the declared charset, with characters it
// cannot represent written as numeric character references.
func (fd *FormData) Markup(target string, modified time.Time, charset string) ([]byte, error) {
	if charset == "" {
		charset = DefaultEncoding
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEncoding, charset)
	}
	if modified.IsZero() {
		modified = time.Now()
	}

	var fields strings.Builder
	for _, n := range fd.names {
		fmt.Fprintf(&fields, `<field name="%s"><value>%s</value></field>`,
			html.EscapeString(n), html.EscapeString(fd.values[n]))
	}
	sum := md5.Sum([]byte(target))

	doc := fmt.Sprintf(`<?xml version="1.0" encoding="%s" ?>
<xfdf xmlns="http://ns.adobe.com/xfdf/" xml:space="preserve">
    <fields>
        %s
    </fields>
    <ids original="%s" modified="%d" />
    <f href="%s" />
</xfdf>`, charset, fields.String(), hex.EncodeToString(sum[:]), modified.Unix(), target)

	out, err := encoding.HTMLEscapeUnsupported(enc.NewEncoder()).String(doc)
	if err != nil {
		return nil, fmt.Errorf("encode form data as %s: %w", charset, err)
	}
	return []byte(out), nil
}
