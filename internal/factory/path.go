package factory

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// pathPunct lists the non-alphanumeric characters a file path may contain.
// Input and output paths are written into the shell command unquoted, so
// everything else is refused.
const pathPunct = "._-/+,:=@%"

// ValidPath reports whether p is non-empty and consists only of letters,
// digits and the characters in pathPunct.
func ValidPath(p string) bool {
	if p == "" {
		return false
	}
	for _, r := range p {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(pathPunct, r) {
			continue
		}
		return false
	}
	return true
}

func checkPath(what, p string) error {
	if p == "" {
		return fmt.Errorf("%w: you must specify a %s", pdftk.ErrValidation, what)
	}
	if !ValidPath(p) {
		return fmt.Errorf("%w: %s %q may only contain letters, digits and %q", pdftk.ErrValidation, what, p, pathPunct)
	}
	return nil
}
