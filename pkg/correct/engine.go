package correct

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/wordfix/pkg/phonetic"
)

// Outcome describes one finished correction.
type Outcome struct {
	Changed    bool
	Fallback   bool
	Candidates int
	Duration   time.Duration
}

// Observer is notified after every correction an Engine performs.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveCorrection(ctx context.Context, o Outcome)
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets the acceptance threshold (0..100). Default: 75.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithWorkers bounds the goroutines CorrectAll uses. Values < 1 mean
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithObserver registers an observer for corrections.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// Engine corrects words against a vocabulary indexed once at construction.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	index     *phonetic.Index
	threshold float64
	workers   int
	observer  Observer
}

// NewEngine indexes vocabulary and returns an Engine. It fails only when the
// configured threshold is outside 0..100.
func NewEngine(vocabulary []string, opts ...Option) (*Engine, error) {
	e := &Engine{threshold: DefaultThreshold}
	for _, o := range opts {
		o(e)
	}
	if err := ValidateThreshold(e.threshold); err != nil {
		return nil, err
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	e.index = phonetic.Build(vocabulary)
	return e, nil
}

// ValidateThreshold checks that t is a usable acceptance threshold.
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 100 {
		return fmt.Errorf("threshold %v out of range [0,100]", t)
	}
	return nil
}

// Index returns the engine's phonetic index.
func (e *Engine) Index() *phonetic.Index {
	return e.index
}

// Threshold returns the default acceptance threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Correct corrects word using the engine threshold.
func (e *Engine) Correct(word string) Result {
	return e.CorrectWithThreshold(word, e.threshold)
}

// CorrectWithThreshold corrects word using threshold instead of the
// engine default.
func (e *Engine) CorrectWithThreshold(word string, threshold float64) Result {
	return e.correct(context.Background(), word, threshold)
}

func (e *Engine) correct(ctx context.Context, word string, threshold float64) Result {
	start := time.Now()
	res, tr := decide(word, e.index, threshold)
	if e.observer != nil {
		e.observer.ObserveCorrection(ctx, Outcome{
			Changed:    res.Changed,
			Fallback:   tr.fallback,
			Candidates: tr.candidates,
			Duration:   time.Since(start),
		})
	}
	return res
}

// Rank returns the scored candidates for word, best first.
func (e *Engine) Rank(word string) []ScoredCandidate {
	return Rank(word, e.index)
}

// CorrectAll corrects words in parallel with the engine threshold.
// Results keep the input order. It only fails when ctx is cancelled.
func (e *Engine) CorrectAll(ctx context.Context, words []string) ([]Result, error) {
	return e.CorrectAllWithThreshold(ctx, words, e.threshold)
}

// CorrectAllWithThreshold is CorrectAll with an explicit threshold.
func (e *Engine) CorrectAllWithThreshold(ctx context.Context, words []string, threshold float64) ([]Result, error) {
	results := make([]Result, len(words))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, w := range words {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.correct(gctx, w, threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
