// Package factory builds ready-to-run toolkits for the common pdftk
// operations from plain Input values, allocating handles by position.
package factory

import (
	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// Factory creates toolkits that all share one pdftk binary.
type Factory struct {
	Binary string
}

// New returns a Factory for binary; empty means pdftk on $PATH.
func New(binary string) *Factory {
	if binary == "" {
		binary = pdftk.DefaultBinary
	}
	return &Factory{Binary: binary}
}

func (f *Factory) toolkit(output string) (*pdftk.Toolkit, error) {
	if err := checkPath("output path", output); err != nil {
		return nil, err
	}
	binary := f.Binary
	if binary == "" {
		binary = pdftk.DefaultBinary
	}
	return pdftk.New(binary).SetOutput(output), nil
}

// single builds a toolkit with one input (handle AA) and op.
func (f *Factory) single(input Input, output string, op pdftk.Operation) (*pdftk.Toolkit, error) {
	tk, err := f.toolkit(output)
	if err != nil {
		return nil, err
	}
	in, err := input.inputFile(0)
	if err != nil {
		return nil, err
	}
	return tk.AddInput(in).SetOperation(op), nil
}

// ranged adds every input with a page range built from its page fields and
// hands the ranges to add in input order.
func (f *Factory) ranged(inputs []Input, output string, add func(*pdftk.PageRange)) (*pdftk.Toolkit, error) {
	tk, err := f.toolkit(output)
	if err != nil {
		return nil, err
	}
	for i, input := range inputs {
		in, err := input.inputFile(i)
		if err != nil {
			return nil, err
		}
		pr, err := input.pageRange(in.Handle())
		if err != nil {
			return nil, err
		}
		tk.AddInput(in)
		add(pr)
	}
	return tk, nil
}

// Cat assembles the selected pages of inputs into output.
func (f *Factory) Cat(inputs []Input, output string) (*pdftk.Toolkit, error) {
	op := &pdftk.Cat{}
	tk, err := f.ranged(inputs, output, func(pr *pdftk.PageRange) { op.AddPageRange(pr) })
	if err != nil {
		return nil, err
	}
	return tk.SetOperation(op), nil
}

// Shuffle collates the selected pages of inputs into output.
func (f *Factory) Shuffle(inputs []Input, output string) (*pdftk.Toolkit, error) {
	op := &pdftk.Shuffle{}
	tk, err := f.ranged(inputs, output, func(pr *pdftk.PageRange) { op.AddPageRange(pr) })
	if err != nil {
		return nil, err
	}
	return tk.SetOperation(op), nil
}

func (f *Factory) Background(input Input, background, output string, multi bool) (*pdftk.Toolkit, error) {
	if err := checkPath("background file", background); err != nil {
		return nil, err
	}
	return f.single(input, output, &pdftk.Background{File: background, Multi: multi})
}

func (f *Factory) MultiBackground(input Input, background, output string) (*pdftk.Toolkit, error) {
	return f.Background(input, background, output, true)
}

func (f *Factory) Stamp(input Input, stamp, output string, multi bool) (*pdftk.Toolkit, error) {
	if err := checkPath("stamp file", stamp); err != nil {
		return nil, err
	}
	return f.single(input, output, &pdftk.Stamp{File: stamp, Multi: multi})
}

func (f *Factory) MultiStamp(input Input, stamp, output string) (*pdftk.Toolkit, error) {
	return f.Stamp(input, stamp, output, true)
}

// Burst splits input into one file per page. output is a printf-style
// pattern such as pg_%04d.pdf.
func (f *Factory) Burst(input Input, output string) (*pdftk.Toolkit, error) {
	return f.single(input, output, pdftk.Burst{})
}

func (f *Factory) GenerateFDF(input Input, output string) (*pdftk.Toolkit, error) {
	return f.single(input, output, pdftk.GenerateFDF{})
}

// FillForm fills input's form from an FDF or XFDF file on disk and sets
// flatten accordingly.
func (f *Factory) FillForm(input Input, dataFile, output string, flatten bool) (*pdftk.Toolkit, error) {
	if err := checkPath("form data file", dataFile); err != nil {
		return nil, err
	}
	return f.fillForm(input, &pdftk.FillForm{DataFile: dataFile}, output, flatten)
}

// FillFormData fills input's form from form, piped to pdftk as XFDF.
func (f *Factory) FillFormData(input Input, form *pdftk.FormData, output string, flatten bool) (*pdftk.Toolkit, error) {
	return f.fillForm(input, &pdftk.FillForm{Form: form}, output, flatten)
}

func (f *Factory) fillForm(input Input, op *pdftk.FillForm, output string, flatten bool) (*pdftk.Toolkit, error) {
	tk, err := f.single(input, output, op)
	if err != nil {
		return nil, err
	}
	if err := tk.SetOption(pdftk.OptFlatten, pdftk.Flag(flatten)); err != nil {
		return nil, err
	}
	return tk, nil
}

func (f *Factory) DumpData(input Input, output string, fields, utf8 bool) (*pdftk.Toolkit, error) {
	return f.single(input, output, &pdftk.DumpData{Fields: fields, UTF8: utf8})
}

func (f *Factory) DumpDataFields(input Input, output string) (*pdftk.Toolkit, error) {
	return f.DumpData(input, output, true, false)
}

func (f *Factory) DumpDataUTF8(input Input, output string) (*pdftk.Toolkit, error) {
	return f.DumpData(input, output, false, true)
}

func (f *Factory) DumpDataFieldsUTF8(input Input, output string) (*pdftk.Toolkit, error) {
	return f.DumpData(input, output, true, true)
}

// UnpackFiles extracts input's attachments into the output directory.
func (f *Factory) UnpackFiles(input Input, output string) (*pdftk.Toolkit, error) {
	return f.single(input, output, pdftk.UnpackFiles{})
}

func (f *Factory) UpdateInfo(input Input, dataFile, output string, utf8 bool) (*pdftk.Toolkit, error) {
	if err := checkPath("info data file", dataFile); err != nil {
		return nil, err
	}
	return f.single(input, output, &pdftk.UpdateInfo{DataFile: dataFile, UTF8: utf8})
}

// AttachFiles embeds files in input. toPage nil attaches at document level.
func (f *Factory) AttachFiles(input Input, files []string, output string, toPage *int) (*pdftk.Toolkit, error) {
	for _, file := range files {
		if err := checkPath("attachment", file); err != nil {
			return nil, err
		}
	}
	op := &pdftk.AttachFiles{Files: append([]string(nil), files...)}
	if toPage != nil {
		op.SetToPage(*toPage)
	}
	return f.single(input, output, op)
}
