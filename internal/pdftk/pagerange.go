package pdftk

import (
	"fmt"
	"regexp"
	"strings"
)

// Qualifier filters a page range down to odd or even pages.
type Qualifier string

const (
	QualifierNone Qualifier = ""
	QualifierEven Qualifier = "even"
	QualifierOdd  Qualifier = "odd"
)

var qualifiers = []Qualifier{QualifierEven, QualifierOdd}

// Rotation turns every page of a range. left, right and down are relative
// to the page's current orientation; the compass points are absolute.
type Rotation string

const (
	RotationNone  Rotation = ""
	RotationNorth Rotation = "north"
	RotationSouth Rotation = "south"
	RotationEast  Rotation = "east"
	RotationWest  Rotation = "west"
	RotationLeft  Rotation = "left"
	RotationRight Rotation = "right"
	RotationDown  Rotation = "down"
)

var rotations = []Rotation{
	RotationNorth, RotationSouth, RotationEast, RotationWest,
	RotationLeft, RotationRight, RotationDown,
}

// ParseQualifier converts a string to a Qualifier. The empty string yields
// QualifierNone.
func ParseQualifier(s string) (Qualifier, error) {
	q := Qualifier(s)
	if q == QualifierNone {
		return q, nil
	}
	for _, allowed := range qualifiers {
		if q == allowed {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid qualifier. Expecting one of %s",
		ErrInvalidQualifier, s, quoteAll(qualifiers))
}

// ParseRotation converts a string to a Rotation. The empty string yields
// RotationNone.
func ParseRotation(s string) (Rotation, error) {
	r := Rotation(s)
	if r == RotationNone {
		return r, nil
	}
	for _, allowed := range rotations {
		if r == allowed {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid rotation. Expecting one of %s",
		ErrInvalidRotation, s, quoteAll(rotations))
}

func quoteAll[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%q", string(v))
	}
	return strings.Join(parts, ", ")
}

var pageTokenRE = regexp.MustCompile(`^r?(end|[1-9][0-9]*)$`)

// ValidPageToken reports whether t is a page locator pdftk understands:
// a positive integer, "end", or either of those prefixed with "r" to count
// from the end of the document.
func ValidPageToken(t string) bool {
	return pageTokenRE.MatchString(t)
}

func checkPage(t string) error {
	if t != "" && !ValidPageToken(t) {
		return fmt.Errorf(`%w: %q is not a valid page. Expecting "end", "rend", positive int, or "r" followed by positive int`, ErrInvalidPage, t)
	}
	return nil
}

// PageRange selects pages from one input file for cat and shuffle. Empty
// page tokens, QualifierNone and RotationNone mean "not set".
type PageRange struct {
	fileHandle string
	startPage  string
	endPage    string
	qualifier  Qualifier
	rotation   Rotation
}

// NewPageRange creates a range covering the whole of the file with handle h.
func NewPageRange(h string) (*PageRange, error) {
	pr := &PageRange{}
	if err := pr.SetFileHandle(h); err != nil {
		return nil, err
	}
	return pr, nil
}

func (pr *PageRange) FileHandle() string   { return pr.fileHandle }
func (pr *PageRange) StartPage() string    { return pr.startPage }
func (pr *PageRange) EndPage() string      { return pr.endPage }
func (pr *PageRange) Qualifier() Qualifier { return pr.qualifier }
func (pr *PageRange) Rotation() Rotation   { return pr.rotation }

func (pr *PageRange) SetFileHandle(h string) error {
	if err := checkHandle(h); err != nil {
		return err
	}
	pr.fileHandle = h
	return nil
}

// SetStartPage sets the first page of the range, or the single page when no
// end page is set. The empty string clears it.
func (pr *PageRange) SetStartPage(t string) error {
	if err := checkPage(t); err != nil {
		return err
	}
	pr.startPage = t
	return nil
}

// SetEndPage sets the last page of the range. The empty string clears it.
func (pr *PageRange) SetEndPage(t string) error {
	if err := checkPage(t); err != nil {
		return err
	}
	pr.endPage = t
	return nil
}

func (pr *PageRange) SetQualifier(q Qualifier) error {
	q, err := ParseQualifier(string(q))
	if err != nil {
		return err
	}
	pr.qualifier = q
	return nil
}

func (pr *PageRange) SetRotation(r Rotation) error {
	r, err := ParseRotation(string(r))
	if err != nil {
		return err
	}
	pr.rotation = r
	return nil
}

// String renders the range in pdftk's compact syntax, e.g. "A1-endevennorth".
// The qualifier only applies to a range with an end page.
func (pr *PageRange) String() string {
	var b strings.Builder
	b.WriteString(pr.fileHandle)
	if pr.startPage != "" {
		b.WriteString(pr.startPage)
		if pr.endPage != "" {
			b.WriteByte('-')
			b.WriteString(pr.endPage)
		}
	}
	if pr.endPage != "" && pr.qualifier != QualifierNone {
		b.WriteString(string(pr.qualifier))
	}
	if pr.rotation != RotationNone {
		b.WriteString(string(pr.rotation))
	}
	return b.String()
}
