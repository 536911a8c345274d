// Package eventlog records run traces: every atomic unit of work a session
// performs (one command, one state machine phase, one streamed program
// step) becomes one appended event. Stores are append-only and use
// optimistic concurrency, so two sessions can never interleave writes to
// the same run.
package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event kinds written by the engine.
const (
	KindRunStarted  = "RunStarted"
	KindStep        = "Step"
	KindBlocked     = "Blocked"
	KindRunFinished = "RunFinished"
	KindRunFailed   = "RunFailed"
)

// Event is one recorded unit of work. Seq is assigned by the store on
// append, starting at 0 per run.
type Event struct {
	RunID string          `json:"runId"`
	Seq   int64           `json:"seq"`
	Kind  string          `json:"kind"`
	Data  json.RawMessage `json:"data,omitempty"`
	At    time.Time       `json:"at"`
}

// NewEvent creates an event with the payload marshaled to JSON. A nil
// payload is allowed.
func NewEvent(runID, kind string, payload any) (*Event, error) {
	e := &Event{RunID: runID, Kind: kind, At: time.Now().UTC()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("eventlog: marshal %s payload: %w", kind, err)
		}
		e.Data = data
	}
	return e, nil
}

// ErrConcurrencyConflict reports an append whose expected sequence did not
// match the run's current tail.
var ErrConcurrencyConflict = errors.New("eventlog: concurrency conflict: run was appended to concurrently")

// Filter selects events for ReadAll. Zero values match everything.
type Filter struct {
	RunID string
	Kinds []string
}

func (f Filter) match(e *Event) bool {
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Store is an append-only event store keyed by run id.
//
// Append writes events after the run's current tail. expectedSeq is the
// sequence number of the last event already in the run, or -1 for a new
// run; a mismatch returns ErrConcurrencyConflict. The returned value is
// the sequence number of the last event written.
type Store interface {
	Append(ctx context.Context, runID string, expectedSeq int64, events []*Event) (int64, error)
	// Read returns a run's events with sequence >= fromSeq, in order.
	Read(ctx context.Context, runID string, fromSeq int64) ([]*Event, error)
	// LastSeq returns the run's tail sequence, or -1 for an unknown run.
	LastSeq(ctx context.Context, runID string) (int64, error)
	// ReadAll returns every matching event across runs, in append order.
	ReadAll(ctx context.Context, filter Filter) ([]*Event, error)
	// DeleteRun removes a run's events. Deleting an unknown run is a no-op.
	DeleteRun(ctx context.Context, runID string) error
	Close() error
}
