// Package correct decides whether a word should be replaced by a vocabulary
// entry, and with which one.
//
// A correction runs in four steps:
//
//  1. the word is normalized (package normalize),
//  2. candidates are taken from its phonetic buckets, or from the whole
//     vocabulary when both buckets are empty (Candidates),
//  3. each candidate is scored against the word (package similarity),
//  4. the best candidate replaces the word when its score reaches the
//     acceptance threshold.
//
// Ties on the best score go to the candidate spelled exactly like the input,
// then to the candidate that appears first in the vocabulary.
//
// Engine wraps an immutable phonetic.Index with a threshold and is the
// value the rest of wordfix passes around. It is safe for concurrent use.
package correct

import (
	"sort"
	"strings"

	"github.com/bastiangx/wordfix/pkg/normalize"
	"github.com/bastiangx/wordfix/pkg/phonetic"
	"github.com/bastiangx/wordfix/pkg/similarity"
)

// DefaultThreshold is the minimum score a candidate needs to replace a word.
const DefaultThreshold = 75.0

// ScoredCandidate is a vocabulary word with its similarity to the input.
type ScoredCandidate struct {
	Word  string  `json:"word" msgpack:"w"`
	Score float64 `json:"score" msgpack:"s"`
}

// Result is the outcome of correcting one word. Corrected is either a
// vocabulary entry or Original unchanged.
type Result struct {
	Original  string  `json:"original"`
	Corrected string  `json:"corrected"`
	Score     float64 `json:"score"`
	Changed   bool    `json:"changed"`
}

// Correct returns the vocabulary entry that should replace word, or word
// itself when no candidate scores at least threshold.
func Correct(word string, idx *phonetic.Index, threshold float64) string {
	res, _ := decide(word, idx, threshold)
	return res.Corrected
}

// Rank scores every candidate for word and returns them best first, using
// the same ordering Correct uses to pick a winner.
func Rank(word string, idx *phonetic.Index) []ScoredCandidate {
	if strings.TrimSpace(word) == "" {
		return nil
	}
	cands, _ := Candidates(word, idx)
	scored := score(word, cands)
	sort.SliceStable(scored, func(i, j int) bool {
		return better(word, scored[i], scored[j])
	})
	return scored
}

// trace carries the details of one decision for observers.
type trace struct {
	candidates int
	fallback   bool
}

func decide(word string, idx *phonetic.Index, threshold float64) (Result, trace) {
	res := Result{Original: word, Corrected: word}
	if strings.TrimSpace(word) == "" {
		return res, trace{}
	}

	cands, fallback := Candidates(word, idx)
	tr := trace{candidates: len(cands), fallback: fallback}
	scored := score(word, cands)
	if len(scored) == 0 {
		return res, tr
	}

	// cands is in vocabulary order, so a strict comparison keeps the
	// earliest of equally scored words.
	best := scored[0]
	for _, c := range scored[1:] {
		if better(word, c, best) {
			best = c
		}
	}

	res.Score = best.Score
	if best.Score >= threshold {
		res.Corrected = best.Word
		res.Changed = best.Word != word
	}
	return res, tr
}

// score compares word with each candidate on normalized forms. Candidates
// normalizing to "" are skipped: an empty pair would otherwise match itself.
func score(word string, cands []string) []ScoredCandidate {
	norm := normalize.Word(word)
	if norm == "" {
		return nil
	}
	scored := make([]ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		cn := normalize.Word(c)
		if cn == "" {
			continue
		}
		scored = append(scored, ScoredCandidate{Word: c, Score: similarity.Score(norm, cn)})
	}
	return scored
}

// better reports whether a ranks strictly ahead of b. Inputs are assumed to
// be in vocabulary order, so equal candidates keep their relative order.
func better(word string, a, b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Word == word && b.Word != word
}
