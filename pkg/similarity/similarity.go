// Package similarity scores how lexically close two normalized words are.
//
// Scores are on a 0..100 scale. Ratio is the normalized insert/delete edit
// similarity; TokenSortRatio applies Ratio after sorting whitespace
// separated tokens; Score blends the two as 0.7*TokenSortRatio + 0.3*Ratio.
// Every function here is symmetric in its arguments.
package similarity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

const (
	tokenWeight = 7
	ratioWeight = 3
)

// ErrEmptyInput is returned by Evaluate when either side is empty.
var ErrEmptyInput = errors.New("similarity: empty input")

// Ratio returns 100 * (1 - d / (len(a)+len(b))) where d is the number of
// single character insertions and deletions turning a into b. Identical
// strings score exactly 100.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	if a == b {
		return 100
	}
	lcs := matchr.LongestCommonSubsequence(a, b)
	dist := total - 2*lcs
	return 100 * (1 - float64(dist)/float64(total))
}

// TokenSortRatio sorts the whitespace separated tokens of each input, joins
// them with single spaces and returns the Ratio of the results.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Evaluate returns the combined score of a and b, or an error when it
// cannot be computed.
func Evaluate(a, b string) (score float64, err error) {
	if a == "" || b == "" {
		return 0, ErrEmptyInput
	}
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, fmt.Errorf("similarity: scoring %q/%q: %v", a, b, r)
		}
	}()
	score = (tokenWeight*TokenSortRatio(a, b) + ratioWeight*Ratio(a, b)) / 10
	return clamp(score), nil
}

// Score is Evaluate with every failure mapped to 0.
func Score(a, b string) float64 {
	score, err := Evaluate(a, b)
	if err != nil {
		return 0
	}
	return score
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
