package pdftk

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies an operation variant.
type Kind int

const (
	KindNoop Kind = iota
	KindCat
	KindShuffle
	KindBackground
	KindStamp
	KindFillForm
	KindGenerateFDF
	KindBurst
	KindDumpData
	KindUnpackFiles
	KindUpdateInfo
	KindAttachFiles
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindNoop:
		return "noop"
	case KindCat:
		return "cat"
	case KindShuffle:
		return "shuffle"
	case KindBackground:
		return "background"
	case KindStamp:
		return "stamp"
	case KindFillForm:
		return "fill_form"
	case KindGenerateFDF:
		return "generate_fdf"
	case KindBurst:
		return "burst"
	case KindDumpData:
		return "dump_data"
	case KindUnpackFiles:
		return "unpack_files"
	case KindUpdateInfo:
		return "update_info"
	case KindAttachFiles:
		return "attach_files"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operation is the single action a pdftk command performs. The set of
// implementations is closed; see Describe.
type Operation interface {
	Kind() Kind
	operation()
}

// Clause is the part of the command line an operation contributes.
// An empty Name means the command has no operation clause at all.
type Clause struct {
	Name     string
	Args     []string
	Stdin    string
	HasStdin bool
}

// Cat assembles pages from the inputs in the order the ranges were added.
type Cat struct {
	Ranges []*PageRange
}

func (o *Cat) AddPageRange(pr *PageRange) *Cat {
	o.Ranges = append(o.Ranges, pr)
	return o
}

// Shuffle collates pages, taking one page from each range in turn.
type Shuffle struct {
	Ranges []*PageRange
}

func (o *Shuffle) AddPageRange(pr *PageRange) *Shuffle {
	o.Ranges = append(o.Ranges, pr)
	return o
}

// Background places File behind the input. With Multi, page n of File backs
// page n of the input.
type Background struct {
	File  string
	Multi bool
}

// Stamp places File on top of the input. With Multi, page n of File stamps
// page n of the input.
type Stamp struct {
	File  string
	Multi bool
}

// FillForm fills the input's form fields, either from a data file on disk or
// from Form, which is piped to pdftk as XFDF.
type FillForm struct {
	DataFile string
	Form     *FormData

	// Target is the PDF the XFDF refers to. The Toolkit substitutes its
	// first input when empty.
	Target   string
	Modified time.Time
	Encoding string
}

// GenerateFDF writes an FDF skeleton of the input's form fields.
type GenerateFDF struct{}

// Burst splits the input into single pages.
type Burst struct{}

// DumpData reports metadata, or form field data with Fields.
type DumpData struct {
	Fields bool
	UTF8   bool
}

// UnpackFiles extracts the input's attachments.
type UnpackFiles struct{}

// UpdateInfo replaces the input's metadata from DataFile.
type UpdateInfo struct {
	DataFile string
	UTF8     bool
}

// AttachFiles embeds Files in the input, on page ToPage when set, otherwise
// at document level.
type AttachFiles struct {
	Files  []string
	ToPage *int
}

func (o *AttachFiles) AddFile(f string) *AttachFiles {
	o.Files = append(o.Files, f)
	return o
}

// SetToPage attaches to page n.
func (o *AttachFiles) SetToPage(n int) *AttachFiles {
	o.ToPage = &n
	return o
}

// Noop emits no operation clause; pdftk then just rewrites the input.
type Noop struct{}

// Custom passes an operation that has no dedicated variant, such as rotate
// or dump_data_annots, straight through. An empty Name behaves like Noop.
type Custom struct {
	Name     string
	Args     []string
	Stdin    string
	HasStdin bool
}

func (*Cat) Kind() Kind         { return KindCat }
func (*Shuffle) Kind() Kind     { return KindShuffle }
func (*Background) Kind() Kind  { return KindBackground }
func (*Stamp) Kind() Kind       { return KindStamp }
func (*FillForm) Kind() Kind    { return KindFillForm }
func (GenerateFDF) Kind() Kind  { return KindGenerateFDF }
func (Burst) Kind() Kind        { return KindBurst }
func (*DumpData) Kind() Kind    { return KindDumpData }
func (UnpackFiles) Kind() Kind  { return KindUnpackFiles }
func (*UpdateInfo) Kind() Kind  { return KindUpdateInfo }
func (*AttachFiles) Kind() Kind { return KindAttachFiles }
func (Noop) Kind() Kind         { return KindNoop }
func (*Custom) Kind() Kind      { return KindCustom }

func (*Cat) operation()         {}
func (*Shuffle) operation()     {}
func (*Background) operation()  {}
func (*Stamp) operation()       {}
func (*FillForm) operation()    {}
func (GenerateFDF) operation()  {}
func (Burst) operation()        {}
func (*DumpData) operation()    {}
func (UnpackFiles) operation()  {}
func (*UpdateInfo) operation()  {}
func (*AttachFiles) operation() {}
func (Noop) operation()         {}
func (*Custom) operation()      {}

// OperationName returns the name op puts on the command line, "" for Noop
// or an unknown operation. Unlike Describe it renders no arguments.
func OperationName(op Operation) string {
	switch o := op.(type) {
	case *Cat:
		return "cat"
	case *Shuffle:
		return "shuffle"
	case *Background:
		if o.Multi {
			return "multibackground"
		}
		return "background"
	case *Stamp:
		if o.Multi {
			return "multistamp"
		}
		return "stamp"
	case *FillForm:
		return "fill_form"
	case GenerateFDF, *GenerateFDF:
		return "generate_fdf"
	case Burst, *Burst:
		return "burst"
	case *DumpData:
		name := "dump_data"
		if o.Fields {
			name += "_fields"
		}
		if o.UTF8 {
			name += "_utf8"
		}
		return name
	case UnpackFiles, *UnpackFiles:
		return "unpack_files"
	case *UpdateInfo:
		if o.UTF8 {
			return "update_info_utf8"
		}
		return "update_info"
	case *AttachFiles:
		return "attach_files"
	case *Custom:
		return o.Name
	default:
		return ""
	}
}

// Describe returns the clause for op. A nil op describes as Noop.
func Describe(op Operation) (Clause, error) {
	name := OperationName(op)
	switch o := op.(type) {
	case nil, Noop, *Noop:
		return Clause{}, nil
	case *Cat:
		return Clause{Name: name, Args: rangeArgs(o.Ranges)}, nil
	case *Shuffle:
		return Clause{Name: name, Args: rangeArgs(o.Ranges)}, nil
	case *Background:
		return Clause{Name: name, Args: []string{o.File}}, nil
	case *Stamp:
		return Clause{Name: name, Args: []string{o.File}}, nil
	case *FillForm:
		if o.Form == nil {
			return Clause{Name: name, Args: []string{o.DataFile}}, nil
		}
		xfdf, err := o.Form.Markup(o.Target, o.Modified, o.Encoding)
		if err != nil {
			return Clause{}, err
		}
		return Clause{Name: name, Args: []string{"-"}, Stdin: string(xfdf), HasStdin: true}, nil
	case GenerateFDF, *GenerateFDF, Burst, *Burst, *DumpData, UnpackFiles, *UnpackFiles:
		return Clause{Name: name}, nil
	case *UpdateInfo:
		return Clause{Name: name, Args: []string{o.DataFile}}, nil
	case *AttachFiles:
		args := append([]string(nil), o.Files...)
		if o.ToPage != nil {
			args = append(args, "to_page", strconv.Itoa(*o.ToPage))
		}
		return Clause{Name: name, Args: args}, nil
	case *Custom:
		if o.Name == "" {
			return Clause{}, nil
		}
		return Clause{
			Name:     name,
			Args:     append([]string(nil), o.Args...),
			Stdin:    o.Stdin,
			HasStdin: o.HasStdin,
		}, nil
	default:
		return Clause{}, fmt.Errorf("%w: %T", ErrUnknownOperation, op)
	}
}

func rangeArgs(ranges []*PageRange) []string {
	args := make([]string, len(ranges))
	for i, pr := range ranges {
		args[i] = pr.String()
	}
	return args
}
