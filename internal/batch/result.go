package batch

import (
	"time"

	"github.com/JonMunkholm/credgrid/internal/core"
)

// Status is the outcome of one input file.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result describes what happened to one matched input file.
type Result struct {
	JobID    string
	Input    string // path matched by the pattern
	Output   string // derived output path, "" if resolution failed
	Org      string
	Members  int
	Dropped  int
	Pages    int
	Status   Status
	Err      error
	Duration time.Duration

	roster *core.Roster
}

// Message returns the coded user message of a failed result.
func (r Result) Message() *core.UserMessage {
	return core.MapError(r.Err)
}

// Summary is the report of one run. Results are in pattern match order.
type Summary struct {
	RunID    string
	Mode     string // "gen", "val" or "csv"
	Layout   string
	Started  time.Time
	Finished time.Time
	Results  []Result
	Peak     int // most documents in flight at once
}

// Count returns how many results have status s.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the failed results.
func (s *Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

// OK reports whether no input failed.
func (s *Summary) OK() bool {
	return s.Count(StatusFailed) == 0
}

// Duration is the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}
