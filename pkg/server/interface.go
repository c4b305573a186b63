/*
Package server implements msgpack IPC for word correction.

The server reads a stream of msgpack-encoded requests from stdin and writes
one msgpack response per request to stdout. The first value it writes is

	{"status": "ready"}

Every request names an action and may carry an id that is echoed back.

Correct a batch of words, optionally with a custom threshold and saving the
report under an id:

	{"id": "r1", "action": "correct", "words": ["helo", "wrld"], "threshold": 80, "report_id": "batch-7"}
	{"id": "r1", "r": [{"o": "helo", "c": "hello"}, {"o": "wrld", "c": "world"}], "c": 2, "t": 85}

Rank the candidates for one word:

	{"id": "r2", "action": "candidates", "word": "helo", "limit": 3}
	{"id": "r2", "word": "helo", "s": [{"w": "hello", "s": 88.9}, {"w": "halo", "s": 75}], "c": 2, "t": 12}

Fetch a stored report, read index statistics, or check liveness:

	{"id": "r3", "action": "report", "report_id": "batch-7"}
	{"id": "r4", "action": "stats"}
	{"id": "r5", "action": "health"}

Failures are answered with an error value. Code 400 marks a bad request,
404 a missing report and 500 a storage failure:

	{"id": "r3", "e": "report not found: batch-7", "c": 404}

Requests are handled one at a time. A batch is corrected in parallel.
Timings in "t" are microseconds.
*/
package server

import (
	"github.com/bastiangx/wordfix/pkg/correct"
	"github.com/bastiangx/wordfix/pkg/report"
)

// Actions understood by the server.
const (
	ActionCorrect    = "correct"
	ActionCandidates = "candidates"
	ActionReport     = "report"
	ActionStats      = "stats"
	ActionHealth     = "health"
)

// Request is the envelope of every IPC request. Only the fields of the
// named action are read.
type Request struct {
	ID        string   `msgpack:"id"`
	Action    string   `msgpack:"action"`
	Words     []string `msgpack:"words,omitempty"`
	Word      string   `msgpack:"word,omitempty"`
	Threshold *float64 `msgpack:"threshold,omitempty"`
	Limit     int      `msgpack:"limit,omitempty"`
	ReportID  string   `msgpack:"report_id,omitempty"`
}

// Correction is one corrected word
type Correction struct {
	Original  string `msgpack:"o"`
	Corrected string `msgpack:"c"`
}

// CorrectResponse answers a correct request
type CorrectResponse struct {
	ID        string       `msgpack:"id"`
	Results   []Correction `msgpack:"r"`
	Count     int          `msgpack:"c"`
	TimeTaken int64        `msgpack:"t"`
	ReportID  string       `msgpack:"report_id,omitempty"`
}

// CandidatesResponse answers a candidates request, best candidate first
type CandidatesResponse struct {
	ID         string                    `msgpack:"id"`
	Word       string                    `msgpack:"word"`
	Candidates []correct.ScoredCandidate `msgpack:"s"`
	Count      int                       `msgpack:"c"`
	TimeTaken  int64                     `msgpack:"t"`
}

// ReportResponse carries a stored report
type ReportResponse struct {
	ID       string        `msgpack:"id"`
	ReportID string        `msgpack:"report_id"`
	Pairs    []report.Pair `msgpack:"r"`
	Count    int           `msgpack:"c"`
}

// StatsResponse describes the loaded index
type StatsResponse struct {
	ID        string         `msgpack:"id"`
	Stats     map[string]int `msgpack:"stats"`
	Threshold float64        `msgpack:"threshold"`
}

// StatusResponse is used for health checks
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
