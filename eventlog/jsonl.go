package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONL writes events as JSON Lines, one event per line, in the
// order given.
func WriteJSONL(w io.Writer, events []*Event) error {
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("eventlog: write jsonl: %w", err)
		}
	}
	return nil
}

// ExportJSONL writes a whole run's trace as JSON Lines.
func ExportJSONL(ctx context.Context, w io.Writer, store Store, runID string) error {
	events, err := store.Read(ctx, runID, 0)
	if err != nil {
		return err
	}
	return WriteJSONL(w, events)
}

// ReadJSONL parses events from JSON Lines. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]*Event, error) {
	var out []*Event
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, fmt.Errorf("eventlog: jsonl line %d: %w", line, err)
		}
		out = append(out, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: read jsonl: %w", err)
	}
	return out, nil
}

// ImportJSONL appends the events of one run parsed from JSON Lines into a
// store. All events must belong to runID and the run must not already
// exist in the store.
func ImportJSONL(ctx context.Context, r io.Reader, store Store, runID string) error {
	events, err := ReadJSONL(r)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.RunID != runID {
			return fmt.Errorf("eventlog: import: event %d belongs to run %q, not %q", e.Seq, e.RunID, runID)
		}
	}
	_, err = store.Append(ctx, runID, -1, events)
	return err
}
