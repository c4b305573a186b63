package correct

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bastiangx/wordfix/pkg/phonetic"
)

// Candidates returns the vocabulary words that may replace word: the union
// of its Soundex and Metaphone buckets, without duplicates, in first
// vocabulary order. When both buckets miss, every distinct vocabulary word
// is returned and fallback is true. That path costs a full scoring pass
// over the vocabulary.
//
// The buckets only narrow the search. A word outside both buckets is never
// considered unless both buckets are empty.
func Candidates(word string, idx *phonetic.Index) (cands []string, fallback bool) {
	if idx == nil || idx.Len() == 0 {
		return nil, false
	}
	soundex, metaphone := phonetic.Codes(word)
	a := idx.Bucket(phonetic.SchemeSoundex, soundex)
	b := idx.Bucket(phonetic.SchemeMetaphone, metaphone)

	if len(a)+len(b) == 0 {
		return append([]string(nil), idx.Unique()...), true
	}

	set := mapset.NewThreadUnsafeSetWithSize[string](len(a) + len(b))
	for _, w := range a {
		set.Add(w)
	}
	for _, w := range b {
		set.Add(w)
	}
	cands = set.ToSlice()
	sort.Slice(cands, func(i, j int) bool {
		pi, _ := idx.Position(cands[i])
		pj, _ := idx.Position(cands[j])
		return pi < pj
	})
	return cands, false
}
