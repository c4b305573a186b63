// Package vocab loads the reference vocabulary: one word per line from a
// memory-mapped file, optionally extended by words kept in Redis.
package vocab

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
)

// ErrEmptyVocabulary is returned by Load when no source produced a word.
var ErrEmptyVocabulary = errors.New("vocabulary is empty")

// maxLine bounds a single vocabulary line.
const maxLine = 1 << 20

// Source provides vocabulary words beyond the main file.
type Source interface {
	Words(ctx context.Context) ([]string, error)
}

// Static is a Source backed by a fixed list.
type Static []string

// Words returns the list unchanged.
func (s Static) Words(context.Context) ([]string, error) {
	return s, nil
}

// Parse reads one word per line. Lines are trimmed, blank lines dropped and
// order kept. Duplicates are kept as well.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return words, nil
}

// LoadFile maps path read-only and parses it. An empty file yields no words.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat vocabulary %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("vocabulary %s is a directory", path)
	}
	// mmap rejects zero-length mappings
	if info.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to map vocabulary %s: %w", path, err)
	}
	defer func() {
		if err := m.Unmap(); err != nil {
			log.Warnf("Failed to unmap %s: %v", path, err)
		}
	}()

	return Parse(bytes.NewReader(m))
}

// Load reads the vocabulary file at path, then appends the words of each
// extra source in order. An empty path skips the file. The result must hold
// at least one word.
func Load(ctx context.Context, path string, extra ...Source) ([]string, error) {
	var words []string
	if path != "" {
		fileWords, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		log.Debugf("Loaded %d words from %s", len(fileWords), path)
		words = fileWords
	}

	for _, src := range extra {
		if src == nil {
			continue
		}
		more, err := src.Words(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load extra vocabulary: %w", err)
		}
		for _, w := range more {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
	}

	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return words, nil
}
