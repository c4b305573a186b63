package server

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordfix/pkg/config"
	"github.com/bastiangx/wordfix/pkg/correct"
	"github.com/bastiangx/wordfix/pkg/report"
)

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	e, err := correct.NewEngine([]string{"hello", "world", "halo", "help"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	var store report.Store
	if withStore {
		ds, err := report.NewDirStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewDirStore: %v", err)
		}
		store = ds
	}
	limits := config.DefaultConfig().Server
	limits.MaxBatch = 4
	limits.MaxWordLength = 16
	limits.MaxCandidates = 2
	return NewServer(e, limits, store)
}

// roundTrip serves the encoded requests and returns a decoder positioned
// after the ready message.
func roundTrip(t *testing.T, s *Server, reqs ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	if err := s.Serve(context.Background(), &in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil || ready.Status != "ready" {
		t.Fatalf("first message = %+v, %v; want ready", ready, err)
	}
	return dec
}

func decodeInto(t *testing.T, dec *msgpack.Decoder, v any) {
	t.Helper()
	if err := dec.Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestServeCorrect(t *testing.T) {
	s := newTestServer(t, false)
	dec := roundTrip(t, s, Request{ID: "r1", Action: ActionCorrect, Words: []string{"helo", "zzzzz", "wrld"}})

	var resp CorrectResponse
	decodeInto(t, dec, &resp)
	want := []Correction{{"helo", "hello"}, {"zzzzz", "zzzzz"}, {"wrld", "world"}}
	if resp.ID != "r1" || resp.Count != 3 || len(resp.Results) != 3 {
		t.Fatalf("response = %+v", resp)
	}
	for i, c := range want {
		if resp.Results[i] != c {
			t.Errorf("result %d = %+v, want %+v", i, resp.Results[i], c)
		}
	}
}

func TestServeCorrectThreshold(t *testing.T) {
	s := newTestServer(t, false)
	strict := 95.0
	dec := roundTrip(t, s, Request{ID: "r1", Action: ActionCorrect, Words: []string{"helo"}, Threshold: &strict})

	var resp CorrectResponse
	decodeInto(t, dec, &resp)
	if len(resp.Results) != 1 || resp.Results[0].Corrected != "helo" {
		t.Errorf("strict threshold result = %+v, want unchanged", resp.Results)
	}
}

func TestServeErrors(t *testing.T) {
	bad := 120.0
	testCases := []struct {
		req  Request
		code int
		desc string
	}{
		{Request{ID: "e1", Action: "explode"}, 400, "unknown action"},
		{Request{ID: "e2"}, 400, "missing action"},
		{Request{ID: "e3", Action: ActionCorrect, Words: []string{"a", "b", "c", "d", "e"}}, 400, "batch too large"},
		{Request{ID: "e4", Action: ActionCorrect, Words: []string{"abcdefghijklmnopq"}}, 400, "word too long"},
		{Request{ID: "e5", Action: ActionCorrect, Words: []string{"helo"}, Threshold: &bad}, 400, "invalid threshold"},
		{Request{ID: "e6", Action: ActionCandidates}, 400, "missing word"},
		{Request{ID: "e7", Action: ActionReport, ReportID: "x"}, 400, "reports disabled"},
		{Request{ID: "e8", Action: ActionCorrect, Words: []string{"helo"}, ReportID: "x"}, 400, "report id without store"},
		{Request{ID: "e9", Action: ActionCorrect, Words: []string{"he\nlo"}}, 400, "newline in word"},
		{Request{ID: "e10", Action: ActionCorrect, Words: []string{"wrld\r"}}, 400, "carriage return in word"},
		{Request{ID: "e11", Action: ActionCandidates, Word: "   "}, 400, "blank word"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			dec := roundTrip(t, newTestServer(t, false), tc.req)
			var resp ErrorResponse
			decodeInto(t, dec, &resp)
			if resp.Code != tc.code || resp.ID != tc.req.ID || resp.Error == "" {
				t.Errorf("response = %+v, want code %d", resp, tc.code)
			}
		})
	}
}

func TestServeInvalidRequestKeepsGoing(t *testing.T) {
	s := newTestServer(t, false)
	dec := roundTrip(t, s, 42, Request{ID: "h", Action: ActionHealth})

	var errResp ErrorResponse
	decodeInto(t, dec, &errResp)
	if errResp.Code != 400 {
		t.Errorf("invalid request response = %+v", errResp)
	}
	var health StatusResponse
	decodeInto(t, dec, &health)
	if health.Status != "ok" || health.ID != "h" {
		t.Errorf("health = %+v", health)
	}
}

func TestServeCandidates(t *testing.T) {
	s := newTestServer(t, false)
	dec := roundTrip(t, s,
		Request{ID: "c1", Action: ActionCandidates, Word: "helo"},
		Request{ID: "c2", Action: ActionCandidates, Word: "helo", Limit: 1},
	)

	var resp CandidatesResponse
	decodeInto(t, dec, &resp)
	if resp.Count != 2 || len(resp.Candidates) != 2 {
		t.Fatalf("default limit response = %+v, want max_candidates results", resp)
	}
	if resp.Candidates[0].Word != "hello" {
		t.Errorf("best candidate = %+v, want hello", resp.Candidates[0])
	}
	if resp.Candidates[0].Score < resp.Candidates[1].Score {
		t.Errorf("candidates not ranked: %+v", resp.Candidates)
	}

	decodeInto(t, dec, &resp)
	if resp.Count != 1 {
		t.Errorf("limit 1 returned %d candidates", resp.Count)
	}
}

func TestServeReports(t *testing.T) {
	s := newTestServer(t, true)
	dec := roundTrip(t, s,
		Request{ID: "a", Action: ActionCorrect, Words: []string{"helo", "wrld"}, ReportID: "batch-1"},
		Request{ID: "b", Action: ActionReport, ReportID: "batch-1"},
		Request{ID: "c", Action: ActionReport, ReportID: "missing"},
		Request{ID: "d", Action: ActionReport, ReportID: "../etc"},
	)

	var saved CorrectResponse
	decodeInto(t, dec, &saved)
	if saved.ReportID != "batch-1" || saved.Count != 2 {
		t.Fatalf("correct response = %+v", saved)
	}

	var rep ReportResponse
	decodeInto(t, dec, &rep)
	want := []report.Pair{{Original: "helo", Corrected: "hello"}, {Original: "wrld", Corrected: "world"}}
	if rep.Count != 2 || rep.Pairs[0] != want[0] || rep.Pairs[1] != want[1] {
		t.Errorf("report = %+v, want %+v", rep, want)
	}

	var missing ErrorResponse
	decodeInto(t, dec, &missing)
	if missing.Code != 404 || missing.ID != "c" {
		t.Errorf("missing report response = %+v, want 404", missing)
	}

	var invalid ErrorResponse
	decodeInto(t, dec, &invalid)
	if invalid.Code != 400 {
		t.Errorf("invalid id response = %+v, want 400", invalid)
	}
}

func TestServeReportWordsAreTrimmed(t *testing.T) {
	s := newTestServer(t, true)
	dec := roundTrip(t, s,
		Request{ID: "a", Action: ActionCorrect, Words: []string{" wrld", "helo\t", "  "}, ReportID: "trimmed"},
		Request{ID: "b", Action: ActionReport, ReportID: "trimmed"},
		Request{ID: "c", Action: ActionCorrect, Words: []string{"he\nlo", "wrld"}, ReportID: "broken"},
		Request{ID: "d", Action: ActionReport, ReportID: "broken"},
	)

	var saved CorrectResponse
	decodeInto(t, dec, &saved)
	want := []Correction{{"wrld", "world"}, {"helo", "hello"}}
	if saved.Count != 2 || saved.Results[0] != want[0] || saved.Results[1] != want[1] {
		t.Fatalf("correct response = %+v, want %+v", saved, want)
	}

	var rep ReportResponse
	decodeInto(t, dec, &rep)
	if rep.Count != 2 {
		t.Fatalf("report = %+v", rep)
	}
	for i, c := range want {
		if rep.Pairs[i].Original != c.Original || rep.Pairs[i].Corrected != c.Corrected {
			t.Errorf("pair %d = %+v, want %+v", i, rep.Pairs[i], c)
		}
	}

	var rejected ErrorResponse
	decodeInto(t, dec, &rejected)
	if rejected.Code != 400 {
		t.Errorf("line break response = %+v, want 400", rejected)
	}

	var missing ErrorResponse
	decodeInto(t, dec, &missing)
	if missing.Code != 404 {
		t.Errorf("rejected report was stored: %+v", missing)
	}
}

func TestServeCandidatesTrimsWord(t *testing.T) {
	s := newTestServer(t, false)
	dec := roundTrip(t, s, Request{ID: "t", Action: ActionCandidates, Word: " helo "})

	var resp CandidatesResponse
	decodeInto(t, dec, &resp)
	if resp.Word != "helo" || resp.Count == 0 || resp.Candidates[0].Word != "hello" {
		t.Errorf("candidates = %+v", resp)
	}
}

func TestServeStats(t *testing.T) {
	s := newTestServer(t, false)
	dec := roundTrip(t, s, Request{ID: "s", Action: ActionStats})

	var resp StatsResponse
	decodeInto(t, dec, &resp)
	if resp.Stats["words"] != 4 || resp.Threshold != correct.DefaultThreshold {
		t.Errorf("stats = %+v", resp)
	}
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordIPCRequest(_ context.Context, action, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[action+"/"+status]++
}

func TestServeRecordsRequests(t *testing.T) {
	s := newTestServer(t, false)
	rec := &countingRecorder{counts: map[string]int{}}
	s.SetRecorder(rec)
	roundTrip(t, s,
		Request{Action: ActionHealth},
		Request{Action: ActionHealth},
		Request{Action: "nope"},
		Request{Action: "nope-2"},
	)
	if rec.counts["health/ok"] != 2 || rec.counts["unknown/error"] != 2 || rec.counts["nope/error"] != 0 {
		t.Errorf("recorded %v", rec.counts)
	}
}
