// Package phonetic builds the sound-alike lookup structures used to narrow
// correction candidates.
//
// Two standard schemes are used for broader recall:
//
//   - SchemeSoundex: the classic consonant-skeleton code (letter + 3 digits).
//   - SchemeMetaphone: the primary Double Metaphone code, a finer sound-alike
//     key that groups spellings like "ph"/"f" and "ck"/"k".
//
// Both encoders come from github.com/antzucaro/matchr. Inputs are expected to
// be normalized already (see package normalize); Codes does that for you.
//
// An Index is built once with Build and is read-only afterwards, so it can be
// shared by any number of goroutines without locking.
package phonetic

import (
	"fmt"

	"github.com/antzucaro/matchr"
	"github.com/bastiangx/wordfix/pkg/normalize"
)

// EmptyCode is the fixed code for input with no encodable letters.
// Neither scheme can produce it for a real word.
const EmptyCode = "-"

// Scheme identifies a phonetic encoding.
type Scheme int

const (
	SchemeSoundex Scheme = iota
	SchemeMetaphone
)

// Schemes lists every scheme an Index holds, in lookup order.
var Schemes = []Scheme{SchemeSoundex, SchemeMetaphone}

func (s Scheme) String() string {
	switch s {
	case SchemeSoundex:
		return "soundex"
	case SchemeMetaphone:
		return "metaphone"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

// Encode returns the code of an already normalized word under scheme.
func Encode(scheme Scheme, normalized string) (code string) {
	if normalized == "" {
		return EmptyCode
	}
	defer func() {
		if recover() != nil {
			code = EmptyCode
		}
	}()
	switch scheme {
	case SchemeSoundex:
		code = matchr.Soundex(normalized)
	case SchemeMetaphone:
		code, _ = matchr.DoubleMetaphone(normalized)
	}
	if code == "" {
		return EmptyCode
	}
	return code
}

// Codes normalizes word and returns its Soundex and Metaphone codes.
func Codes(word string) (soundex, metaphone string) {
	n := normalize.Word(word)
	return Encode(SchemeSoundex, n), Encode(SchemeMetaphone, n)
}
