package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/listsync/internal/notify"
	"github.com/dshills/listsync/internal/tracking"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown format %q (must be text or json)", format)
	}
	return nil
}

type jsonOperation struct {
	Kind    string          `json:"kind"`
	Start   int             `json:"start"`
	Count   int             `json:"count"`
	To      *int            `json:"to,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type jsonSummary struct {
	Events   int `json:"events"`
	Inserted int `json:"inserted"`
	Removed  int `json:"removed"`
	Changed  int `json:"changed"`
	Moved    int `json:"moved"`
}

type jsonReport struct {
	Operations []jsonOperation `json:"operations"`
	Summary    jsonSummary     `json:"summary"`
}

// writeScript prints events in the given format. Change payloads are
// expected to be raw JSON identities.
func writeScript(w io.Writer, format string, events []notify.Event) error {
	summary := tracking.Summarize(events)

	if format == formatText {
		for _, e := range events {
			if _, err := fmt.Fprintln(w, e.String()); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(w, summary.String())
		return err
	}

	report := jsonReport{
		Operations: make([]jsonOperation, len(events)),
		Summary: jsonSummary{
			Events:   summary.Events,
			Inserted: summary.Inserted,
			Removed:  summary.Removed,
			Changed:  summary.Changed,
			Moved:    summary.Moved,
		},
	}
	for i, e := range events {
		op := jsonOperation{Kind: e.Kind.String(), Start: e.Start, Count: e.Count}
		if e.Kind == notify.EventMoved {
			to := e.To
			op.To = &to
		}
		if id, ok := e.Payload.(string); ok {
			op.Payload = json.RawMessage(id)
		}
		report.Operations[i] = op
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
