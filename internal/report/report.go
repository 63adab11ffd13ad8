// Package report encodes a batch run's termination records to the
// line-oriented text format spec.md sec 6 specifies, and an optional
// JSON summary carrying a run id.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"photontrace/internal/photon"
)

// WriteRecords writes one line per termination in the format
// "type tet_index x y z dx dy dz weight" (spec.md sec 6).
func WriteRecords(w io.Writer, terms []photon.Termination) error {
	bw := bufio.NewWriter(w)
	for _, t := range terms {
		_, err := fmt.Fprintf(bw, "%s %d %g %g %g %g %g %g %g\n",
			t.Class, t.TetIndex,
			t.Pos.X(), t.Pos.Y(), t.Pos.Z(),
			t.Dir.X(), t.Dir.Y(), t.Dir.Z(),
			t.Weight,
		)
		if err != nil {
			return fmt.Errorf("report: write record: %w", err)
		}
	}
	return bw.Flush()
}

// Summary is the JSON-encodable run report: a run identifier, the
// per-classification counts, and phase timings.
type Summary struct {
	RunID     string           `json:"run_id"`
	Photons   int              `json:"photons"`
	Counts    map[string]int64 `json:"counts"`
	Durations map[string]string `json:"durations"`
}

// NewSummary builds a Summary tagged with runID (see NewRunID) from
// classification counts and phase timings.
func NewSummary(runID string, photons int, counts map[photon.Classification]int64, durations map[string]string) Summary {
	c := make(map[string]int64, len(counts))
	for k, v := range counts {
		c[k.String()] = v
	}
	return Summary{
		RunID:     runID,
		Photons:   photons,
		Counts:    c,
		Durations: durations,
	}
}

// NewRunID stamps a fresh run identifier (google/uuid, adopted from
// the example pack's engine repo — see DESIGN.md), shared between log
// lines and the JSON summary so both refer to the same run.
func NewRunID() string {
	return uuid.NewString()
}

// WriteJSON encodes s to w as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
