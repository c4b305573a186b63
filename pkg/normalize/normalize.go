// Package normalize reduces raw words to the form used for phonetic encoding
// and similarity scoring.
//
// A normalized word holds only lowercase ASCII letters, and every run of one
// repeated vowel is collapsed to a single vowel:
//
//	normalize.Word("Feeet!")  // "fet"
//	normalize.Word("Boook")   // "bok"
//	normalize.Word("Beauty")  // "beauty" (mixed vowel runs are kept)
//
// Normalization never fails. Anything that is not usable text becomes "".
package normalize

import "strings"

// Word returns the normalized form of raw.
// Applying Word to its own output returns the same string.
func Word(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw))
	var last byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c >= 'a' && c <= 'z':
		default:
			continue
		}
		if isVowel(c) && c == last {
			continue
		}
		b.WriteByte(c)
		last = c
	}
	return b.String()
}

// Value normalizes an arbitrary value. nil and non-string values yield "".
func Value(v any) string {
	switch s := v.(type) {
	case string:
		return Word(s)
	case *string:
		if s == nil {
			return ""
		}
		return Word(*s)
	default:
		return ""
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
