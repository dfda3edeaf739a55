// Package sanitize cleans text before it is embedded in generated SQL.
//
// Every identifier and literal that reaches statement text passes through
// String (or Strict for identifiers in schema statements). The output never
// contains an unescaped single quote or any of the comment sequences "--",
// "/*" and "*/". All other characters, including non-ASCII text and (for
// String) CR/LF, are preserved.
//
// Invalid UTF-8 bytes are replaced with U+FFFD by the control-character pass.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// commentSequences are removed until none remains, in this order.
var commentSequences = []string{"--", "/*", "*/"}

var (
	// dropControl removes runes below 32 except CR and LF.
	dropControl = runes.Remove(runes.Predicate(func(r rune) bool {
		return r < 32 && r != '\r' && r != '\n'
	}))

	// dropAllControl removes every rune below 32.
	dropAllControl = runes.Remove(runes.Predicate(func(r rune) bool {
		return r < 32
	}))
)

// String returns s with control characters (except CR/LF) removed, SQL
// comment sequences removed, and single quotes doubled.
func String(s string) string {
	if s == "" {
		return ""
	}
	return escapeQuotes(Clean(s))
}

// Strict is String with CR and LF removed as well. Used for names in
// introspection and DDL statements, where line breaks are never legitimate.
func Strict(s string) string {
	if s == "" {
		return ""
	}
	return escapeQuotes(CleanStrict(s))
}

// Clean runs the removal steps of String without escaping quotes.
// Clean is idempotent.
func Clean(s string) string {
	return stripComments(apply(dropControl, s))
}

// CleanStrict runs the removal steps of Strict without escaping quotes.
func CleanStrict(s string) string {
	return stripComments(apply(dropAllControl, s))
}

// HasExtendedCharacters reports whether s contains any rune outside ASCII.
// Literals with extended characters get the wide string prefix.
func HasExtendedCharacters(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

func apply(t transform.Transformer, s string) string {
	out, _, err := transform.String(t, s)
	if err != nil {
		// runes.Remove only fails on short buffers, which transform.String grows.
		return ""
	}
	return out
}

// stripComments removes comment sequences until the text has none left.
// Removing one sequence can splice another ("-/**/-" becomes "--"), so the
// passes repeat until a full round changes nothing.
func stripComments(s string) string {
	for {
		before := s
		for _, seq := range commentSequences {
			s = removeAll(s, seq)
		}
		if s == before {
			return s
		}
	}
}

// removeAll deletes seq from s one occurrence at a time, rescanning from the
// start each time so that overlapping sequences collapse fully.
func removeAll(s, seq string) string {
	for {
		i := strings.Index(s, seq)
		if i < 0 {
			return s
		}
		s = s[:i] + s[i+len(seq):]
	}
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
