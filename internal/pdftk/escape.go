package pdftk

import "strings"

// shellQuote wraps s in single quotes for a POSIX shell. Embedded single
// quotes are closed, escaped and reopened. Every argument is quoted, even
// when it contains nothing special.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func shellQuoteAll(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}
