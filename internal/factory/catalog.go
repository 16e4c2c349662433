package factory

import (
	"fmt"
	"sort"

	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// OperationInfo describes one operation the factory can build.
type OperationInfo struct {
	Name        string
	Kind        pdftk.Kind
	MultiInput  bool // accepts more than one input, each with a page range
	Description string
}

var catalog = map[string]OperationInfo{
	"cat":                   {"cat", pdftk.KindCat, true, "assemble pages from one or more inputs"},
	"shuffle":               {"shuffle", pdftk.KindShuffle, true, "collate pages, one from each range in turn"},
	"background":            {"background", pdftk.KindBackground, false, "place a PDF behind every page"},
	"multibackground":       {"multibackground", pdftk.KindBackground, false, "place page n of a PDF behind page n"},
	"stamp":                 {"stamp", pdftk.KindStamp, false, "place a PDF on top of every page"},
	"multistamp":            {"multistamp", pdftk.KindStamp, false, "place page n of a PDF on top of page n"},
	"burst":                 {"burst", pdftk.KindBurst, false, "split into single pages"},
	"generate_fdf":          {"generate_fdf", pdftk.KindGenerateFDF, false, "write an FDF of the form fields"},
	"fill_form":             {"fill_form", pdftk.KindFillForm, false, "fill form fields from a data file or inline fields"},
	"dump_data":             {"dump_data", pdftk.KindDumpData, false, "report metadata and bookmarks"},
	"dump_data_fields":      {"dump_data_fields", pdftk.KindDumpData, false, "report form fields"},
	"dump_data_utf8":        {"dump_data_utf8", pdftk.KindDumpData, false, "report metadata as UTF-8"},
	"dump_data_fields_utf8": {"dump_data_fields_utf8", pdftk.KindDumpData, false, "report form fields as UTF-8"},
	"unpack_files":          {"unpack_files", pdftk.KindUnpackFiles, false, "extract attachments"},
	"update_info":           {"update_info", pdftk.KindUpdateInfo, false, "replace metadata from a data file"},
	"update_info_utf8":      {"update_info_utf8", pdftk.KindUpdateInfo, false, "replace metadata from a UTF-8 data file"},
	"attach_files":          {"attach_files", pdftk.KindAttachFiles, false, "embed files, optionally on one page"},
}

// Operations returns every known operation sorted by name.
func Operations() []OperationInfo {
	out := make([]OperationInfo, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupOperation returns the catalog entry for name.
func LookupOperation(name string) (OperationInfo, error) {
	info, ok := catalog[name]
	if !ok {
		return OperationInfo{}, fmt.Errorf("%w: %q", pdftk.ErrUnknownOperation, name)
	}
	return info, nil
}
