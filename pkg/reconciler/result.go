package reconciler

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Report is the summary of one run. Entries hold exactly one outcome per
// fetched record, in batch order.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	DryRun    bool          `json:"dry_run" yaml:"dry_run"`
	CheckOnly bool          `json:"check_only,omitempty" yaml:"check_only,omitempty"`

	Fetched int `json:"fetched" yaml:"fetched"`
	Synced  int `json:"synced" yaml:"synced"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Failed  int `json:"failed" yaml:"failed"`

	// States counts outcomes per terminal state.
	States map[State]int `json:"states" yaml:"states"`

	Entries []Outcome `json:"entries" yaml:"entries"`

	mu sync.Mutex
}

// NewReport creates an empty report stamped with a new run id.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		States:    make(map[State]int),
		Entries:   []Outcome{},
	}
}

// begin sizes the entry list for a fetched batch.
func (r *Report) begin(fetched int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fetched = fetched
	r.Entries = make([]Outcome, fetched)
}

// record stores an outcome at its batch index and updates the tallies.
// It is safe for concurrent use.
func (r *Report) record(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.Index >= 0 && o.Index < len(r.Entries) {
		r.Entries[o.Index] = o
	} else {
		r.Entries = append(r.Entries, o)
	}

	r.States[o.State]++
	switch o.State.Category() {
	case CategorySynced:
		r.Synced++
	case CategorySkipped:
		r.Skipped++
	case CategoryFailed:
		r.Failed++
	}
}

// Finalize calculates duration and marks completion.
func (r *Report) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// HasFailures returns true if any record failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// Filter returns the outcomes in the given states, in batch order.
func (r *Report) Filter(states ...State) []Outcome {
	want := make(map[State]bool, len(states))
	for _, s := range states {
		want[s] = true
	}
	var out []Outcome
	for _, o := range r.Entries {
		if want[o.State] {
			out = append(out, o)
		}
	}
	return out
}

// Summary returns a human-readable summary of the report.
func (r *Report) Summary() string {
	switch {
	case r.CheckOnly:
		return fmt.Sprintf("Check completed. %d fetched, %d eligible, %d rejected.",
			r.Fetched, r.States[StateEligible], r.States[StateRejected])
	case r.DryRun:
		return fmt.Sprintf("Dry run completed. %d fetched, %d would change, %d unchanged, %d skipped, %d failed.",
			r.Fetched, r.States[StatePlanned], r.States[StateUnchanged], r.Skipped, r.Failed)
	case r.Failed > 0:
		return fmt.Sprintf("Sync completed with failures. %d fetched, %d synced, %d skipped, %d failed.",
			r.Fetched, r.Synced, r.Skipped, r.Failed)
	default:
		return fmt.Sprintf("Sync completed. %d fetched, %d synced, %d skipped, %d failed.",
			r.Fetched, r.Synced, r.Skipped, r.Failed)
	}
}
