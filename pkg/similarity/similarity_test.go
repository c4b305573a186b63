package similarity

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatio(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected float64
	}{
		{"", "", 100},
		{"hello", "hello", 100},
		{"helo", "hello", 100 * 8.0 / 9.0},
		{"abc", "xyz", 0},
		{"abc", "", 0},
		{"ab", "ba", 50},
		{"kitten", "sitting", 100 * 8.0 / 13.0},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			if got := Ratio(tc.a, tc.b); !near(got, tc.expected) {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestTokenSortRatio(t *testing.T) {
	if got := TokenSortRatio("new york", "york new"); got != 100 {
		t.Errorf("TokenSortRatio should ignore token order, got %v", got)
	}
	if got := TokenSortRatio("  new   york ", "york new"); got != 100 {
		t.Errorf("TokenSortRatio should ignore extra whitespace, got %v", got)
	}
	if got, want := TokenSortRatio("helo", "hello"), Ratio("helo", "hello"); got != want {
		t.Errorf("single tokens should reduce to Ratio: %v vs %v", got, want)
	}
}

func TestScoreIdentical(t *testing.T) {
	for _, w := range []string{"a", "hello", "fet", "internationalization"} {
		if got := Score(w, w); got != 100 {
			t.Errorf("Score(%q, %q) = %v, want exactly 100", w, w, got)
		}
	}
}

func TestScoreSymmetric(t *testing.T) {
	words := []string{"", "hello", "helo", "world", "zzzzz", "new york", "york", "a"}
	for _, a := range words {
		for _, b := range words {
			if Score(a, b) != Score(b, a) {
				t.Errorf("Score(%q,%q)=%v but Score(%q,%q)=%v", a, b, Score(a, b), b, a, Score(b, a))
			}
		}
	}
}

func TestScoreWeights(t *testing.T) {
	// token order only affects the token-sort part
	got := Score("york new", "new york")
	want := (7*100 + 3*Ratio("york new", "new york")) / 10
	if !near(got, want) {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScoreRange(t *testing.T) {
	pairs := [][2]string{{"hello", "world"}, {"zzzzz", "hello"}, {"a", "b"}, {"helo", "hello"}}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		if s < 0 || s > 100 {
			t.Errorf("Score(%q,%q) = %v out of range", p[0], p[1], s)
		}
	}
	if got := Score("zzzzz", "hello"); got != 0 {
		t.Errorf("Score with no common letters = %v, want 0", got)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	for _, p := range [][2]string{{"", "x"}, {"x", ""}, {"", ""}} {
		score, err := Evaluate(p[0], p[1])
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Evaluate(%q,%q) err = %v, want ErrEmptyInput", p[0], p[1], err)
		}
		if score != 0 {
			t.Errorf("Evaluate(%q,%q) score = %v, want 0", p[0], p[1], score)
		}
		if Score(p[0], p[1]) != 0 {
			t.Errorf("Score(%q,%q) should be 0", p[0], p[1])
		}
	}
}

func BenchmarkScore(b *testing.B) {
	pairs := [][2]string{{"helo", "hello"}, {"wrld", "world"}, {"internationl", "international"}}
	for i := 0; i < b.N; i++ {
		p := pairs[i%len(pairs)]
		Score(p[0], p[1])
	}
}
