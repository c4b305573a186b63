package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordfix/internal/logger"
	"github.com/bastiangx/wordfix/pkg/config"
	"github.com/bastiangx/wordfix/pkg/correct"
	"github.com/bastiangx/wordfix/pkg/report"
)

// Recorder counts handled requests. observe.Metrics implements it.
type Recorder interface {
	RecordIPCRequest(ctx context.Context, action, status string)
}

// Server handles IPC for word corrections
type Server struct {
	engine   *correct.Engine
	limits   config.ServerConfig
	store    report.Store
	recorder Recorder
	log      *log.Logger
}

// NewServer creates a correction server. store may be nil, in which case
// report ids are rejected.
func NewServer(engine *correct.Engine, limits config.ServerConfig, store report.Store) *Server {
	return &Server{
		engine: engine,
		limits: limits,
		store:  store,
		log:    logger.New("ipc"),
	}
}

// SetRecorder registers a request counter.
func (s *Server) SetRecorder(r Recorder) {
	s.recorder = r
}

// Start serves requests from stdin until it is closed.
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve writes the ready message, then answers each request read from r on
// w. It returns nil when r ends cleanly between requests.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.log.Debug("Starting server")
	bw := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(bw)
	dec := msgpack.NewDecoder(bufio.NewReader(r))

	send := func(v any) error {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		return bw.Flush()
	}

	if err := send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		var raw msgpack.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Input closed, stopping server")
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			s.record(ctx, "invalid", "error")
			if err := send(ErrorResponse{Error: "invalid request", Code: 400}); err != nil {
				return err
			}
			continue
		}

		resp := s.Handle(ctx, req)
		status := "ok"
		if _, failed := resp.(ErrorResponse); failed {
			status = "error"
		}
		s.record(ctx, recordedAction(req.Action), status)
		if err := send(resp); err != nil {
			return err
		}
	}
}

// recordedAction bounds the action attribute to the known actions.
func recordedAction(action string) string {
	switch action {
	case ActionCorrect, ActionCandidates, ActionReport, ActionStats, ActionHealth:
		return action
	}
	return "unknown"
}

func (s *Server) record(ctx context.Context, action, status string) {
	if s.recorder != nil {
		s.recorder.RecordIPCRequest(ctx, action, status)
	}
}

// Handle answers a single request.
func (s *Server) Handle(ctx context.Context, req Request) any {
	switch req.Action {
	case ActionCorrect:
		return s.handleCorrect(ctx, req)
	case ActionCandidates:
		return s.handleCandidates(req)
	case ActionReport:
		return s.handleReport(ctx, req)
	case ActionStats:
		return StatsResponse{ID: req.ID, Stats: s.engine.Index().Stats(), Threshold: s.engine.Threshold()}
	case ActionHealth:
		return StatusResponse{ID: req.ID, Status: "ok"}
	case "":
		return errorf(req.ID, 400, "missing action")
	default:
		return errorf(req.ID, 400, "unknown action: %s", req.Action)
	}
}

func errorf(id string, code int, format string, args ...any) ErrorResponse {
	return ErrorResponse{ID: id, Error: fmt.Sprintf(format, args...), Code: code}
}

func (s *Server) checkWord(id, word string) *ErrorResponse {
	if len(word) > s.limits.MaxWordLength {
		e := errorf(id, 400, "word exceeds maximum length of %d bytes", s.limits.MaxWordLength)
		return &e
	}
	if strings.ContainsAny(word, "\r\n") {
		e := errorf(id, 400, "word must not contain line breaks")
		return &e
	}
	return nil
}

// cleanWords trims each word and drops the blank ones, like vocabulary lines.
func cleanWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func (s *Server) handleCorrect(ctx context.Context, req Request) any {
	if len(req.Words) > s.limits.MaxBatch {
		return errorf(req.ID, 400, "batch of %d words exceeds maximum of %d", len(req.Words), s.limits.MaxBatch)
	}
	for _, w := range req.Words {
		if e := s.checkWord(req.ID, w); e != nil {
			return *e
		}
	}
	words := cleanWords(req.Words)

	threshold := s.engine.Threshold()
	if req.Threshold != nil {
		if err := correct.ValidateThreshold(*req.Threshold); err != nil {
			return errorf(req.ID, 400, "%v", err)
		}
		threshold = *req.Threshold
	}

	if req.ReportID != "" {
		if s.store == nil {
			return errorf(req.ID, 400, "report storage is disabled")
		}
		if err := report.ValidateID(req.ReportID); err != nil {
			return errorf(req.ID, 400, "%v", err)
		}
	}

	start := time.Now()
	results, err := s.engine.CorrectAllWithThreshold(ctx, words, threshold)
	if err != nil {
		return errorf(req.ID, 500, "correction aborted: %v", err)
	}
	elapsed := time.Since(start)

	corrections := make([]Correction, len(results))
	for i, r := range results {
		corrections[i] = Correction{Original: r.Original, Corrected: r.Corrected}
	}

	if req.ReportID != "" {
		if err := s.store.Save(ctx, req.ReportID, report.FromResults(results)); err != nil {
			s.log.Errorf("Saving report %s: %v", req.ReportID, err)
			return errorf(req.ID, 500, "failed to save report: %v", err)
		}
	}

	s.log.Debugf("Corrected %d words in %s", len(results), elapsed)
	return CorrectResponse{
		ID:        req.ID,
		Results:   corrections,
		Count:     len(corrections),
		TimeTaken: elapsed.Microseconds(),
		ReportID:  req.ReportID,
	}
}

func (s *Server) handleCandidates(req Request) any {
	if e := s.checkWord(req.ID, req.Word); e != nil {
		return *e
	}
	word := strings.TrimSpace(req.Word)
	if word == "" {
		return errorf(req.ID, 400, "missing 'word' parameter")
	}

	limit := req.Limit
	if limit < 1 || limit > s.limits.MaxCandidates {
		limit = s.limits.MaxCandidates
	}

	start := time.Now()
	ranked := s.engine.Rank(word)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []correct.ScoredCandidate{}
	}
	return CandidatesResponse{
		ID:         req.ID,
		Word:       word,
		Candidates: ranked,
		Count:      len(ranked),
		TimeTaken:  time.Since(start).Microseconds(),
	}
}

func (s *Server) handleReport(ctx context.Context, req Request) any {
	if s.store == nil {
		return errorf(req.ID, 400, "report storage is disabled")
	}
	pairs, err := s.store.Load(ctx, req.ReportID)
	switch {
	case errors.Is(err, report.ErrInvalidID):
		return errorf(req.ID, 400, "%v", err)
	case errors.Is(err, report.ErrNotFound):
		return errorf(req.ID, 404, "%v", err)
	case err != nil:
		s.log.Errorf("Loading report %s: %v", req.ReportID, err)
		return errorf(req.ID, 500, "failed to load report: %v", err)
	}
	return ReportResponse{ID: req.ID, ReportID: req.ReportID, Pairs: pairs, Count: len(pairs)}
}
