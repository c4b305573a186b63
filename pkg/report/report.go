// Package report encodes correction reports and keeps them in a store.
//
// The text format is a header line followed by one line per corrected
// word:
//
//	File_Error Corrected
//	helo hello
//	zzzzz zzzzz
//
// Every line ends with '\n'. Stores persist this text as is.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/wordfix/pkg/correct"
)

// Header is the first line of every report.
const Header = "File_Error Corrected"

var (
	// ErrMalformed is returned by Decode for text that is not a report.
	ErrMalformed = errors.New("malformed report")
	// ErrNotFound is returned by Store.Load for unknown ids.
	ErrNotFound = errors.New("report not found")
	// ErrInvalidID is returned for ids that are empty or contain characters
	// other than letters, digits, '-', '_' and '.'.
	ErrInvalidID = errors.New("invalid report id")
)

// Pair is one line of a report.
type Pair struct {
	Original  string `json:"original" msgpack:"o"`
	Corrected string `json:"corrected" msgpack:"c"`
}

// FromResults converts correction results into report pairs, keeping order.
func FromResults(results []correct.Result) []Pair {
	pairs := make([]Pair, len(results))
	for i, r := range results {
		pairs[i] = Pair{Original: r.Original, Corrected: r.Corrected}
	}
	return pairs
}

// Encode writes pairs in report format.
func Encode(w io.Writer, pairs []Pair) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(Header)
	bw.WriteByte('\n')
	for _, p := range pairs {
		bw.WriteString(p.Original)
		bw.WriteByte(' ')
		bw.WriteString(p.Corrected)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Decode reads a report written by Encode. Each line is split at its first
// space, so originals containing spaces do not survive a round trip.
func Decode(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if scanner.Text() != Header {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformed, scanner.Text())
	}

	pairs := []Pair{}
	line := 1
	for scanner.Scan() {
		line++
		orig, corr, ok := strings.Cut(scanner.Text(), " ")
		if !ok {
			return nil, fmt.Errorf("%w: line %d has no separator", ErrMalformed, line)
		}
		pairs = append(pairs, Pair{Original: orig, Corrected: corr})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func encodeBytes(pairs []Pair) ([]byte, error) {
	var sb strings.Builder
	if err := Encode(&sb, pairs); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func decodeBytes(data []byte) ([]Pair, error) {
	return Decode(strings.NewReader(string(data)))
}

// ValidateID checks that id is usable as a file name and storage key.
func ValidateID(id string) error {
	if id == "" || len(id) > 128 || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}
