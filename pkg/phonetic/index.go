package phonetic

import (
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// bucket holds the vocabulary words sharing one code, in vocabulary order.
type bucket struct {
	words []string
}

// Index maps phonetic codes to the vocabulary words that share them,
// one trie per scheme. It also keeps the vocabulary itself.
type Index struct {
	vocabulary []string
	unique     []string
	positions  map[string]int
	tries      [2]*patricia.Trie
	buckets    [2]int
	largest    int
}

// Build indexes vocabulary under both schemes. Each entry, duplicates
// included, is appended to exactly one bucket per scheme: the bucket of its
// own code. Words that normalize to "" land in the EmptyCode bucket.
// vocabulary is copied and never modified.
func Build(vocabulary []string) *Index {
	idx := &Index{
		vocabulary: append([]string(nil), vocabulary...),
		positions:  make(map[string]int, len(vocabulary)),
	}
	for i := range idx.tries {
		idx.tries[i] = patricia.NewTrie()
	}

	for pos, word := range idx.vocabulary {
		if _, seen := idx.positions[word]; !seen {
			idx.positions[word] = pos
			idx.unique = append(idx.unique, word)
		}
		soundex, metaphone := Codes(word)
		idx.add(SchemeSoundex, soundex, word)
		idx.add(SchemeMetaphone, metaphone, word)
	}
	return idx
}

func (idx *Index) add(scheme Scheme, code, word string) {
	trie := idx.tries[scheme]
	key := patricia.Prefix(code)
	b, ok := trie.Get(key).(*bucket)
	if !ok {
		b = &bucket{}
		trie.Insert(key, b)
		idx.buckets[scheme]++
	}
	b.words = append(b.words, word)
	if len(b.words) > idx.largest {
		idx.largest = len(b.words)
	}
}

// Bucket returns the words stored under code for scheme, or nil.
// The returned slice must not be modified.
func (idx *Index) Bucket(scheme Scheme, code string) []string {
	if int(scheme) < 0 || int(scheme) >= len(idx.tries) || code == "" {
		return nil
	}
	if b, ok := idx.tries[scheme].Get(patricia.Prefix(code)).(*bucket); ok {
		return b.words
	}
	return nil
}

// Walk calls fn for every bucket of scheme in ascending code order.
// Returning false stops the walk.
func (idx *Index) Walk(scheme Scheme, fn func(code string, words []string) bool) {
	if int(scheme) < 0 || int(scheme) >= len(idx.tries) {
		return
	}
	type entry struct {
		code  string
		words []string
	}
	var entries []entry
	idx.tries[scheme].Visit(func(p patricia.Prefix, item patricia.Item) error {
		if b, ok := item.(*bucket); ok {
			entries = append(entries, entry{code: string(p), words: b.words})
		}
		return nil
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].code < entries[j].code })
	for _, e := range entries {
		if !fn(e.code, e.words) {
			return
		}
	}
}

// Vocabulary returns the indexed words in load order, duplicates included.
func (idx *Index) Vocabulary() []string {
	return idx.vocabulary
}

// Unique returns the vocabulary without duplicates, ordered by first
// occurrence.
func (idx *Index) Unique() []string {
	return idx.unique
}

// Position returns the first vocabulary position of word.
func (idx *Index) Position(word string) (int, bool) {
	pos, ok := idx.positions[word]
	return pos, ok
}

// Len returns the number of vocabulary entries, duplicates included.
func (idx *Index) Len() int {
	return len(idx.vocabulary)
}

// Stats returns counters describing the index.
func (idx *Index) Stats() map[string]int {
	return map[string]int{
		"words":             len(idx.vocabulary),
		"unique":            len(idx.unique),
		"soundex_buckets":   idx.buckets[SchemeSoundex],
		"metaphone_buckets": idx.buckets[SchemeMetaphone],
		"largest_bucket":    idx.largest,
	}
}
