package reconciler

import (
	"time"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/merge"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// State is the terminal state of one record in a run.
type State string

const (
	// StateRejected means the validator found the contact unfit.
	StateRejected State = "rejected"
	// StateNotFound means no target customer carries the contact's key.
	StateNotFound State = "not_found"
	// StateApplied means the merged customer was written to the target.
	StateApplied State = "applied"
	// StateUnchanged means the merge changed nothing so no update was sent.
	StateUnchanged State = "unchanged"
	// StatePlanned means a dry run computed the merge without applying it.
	StatePlanned State = "planned"
	// StateEligible means a check run found the contact fit for sync.
	StateEligible State = "eligible"
	// StateFailed means a target call failed or processing was interrupted.
	StateFailed State = "failed"
)

// Category groups states into the three report tallies.
type Category string

// Report tallies.
const (
	CategorySynced  Category = "synced"
	CategorySkipped Category = "skipped"
	CategoryFailed  Category = "failed"
)

// Category returns the tally a state counts towards.
func (s State) Category() Category {
	switch s {
	case StateRejected, StateNotFound:
		return CategorySkipped
	case StateFailed:
		return CategoryFailed
	default:
		return CategorySynced
	}
}

// Outcome is the result of processing one fetched record.
type Outcome struct {
	Index      int            `json:"index" yaml:"index"`
	ContactID  string         `json:"contact_id" yaml:"contact_id"`
	Key        records.Key    `json:"key,omitempty" yaml:"key,omitempty"`
	State      State          `json:"state" yaml:"state"`
	Reason     errors.Reason  `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	TargetCode string         `json:"target_code,omitempty" yaml:"target_code,omitempty"`
	Changes    []merge.Change `json:"changes,omitempty" yaml:"changes,omitempty"`
	Duration   time.Duration  `json:"duration" yaml:"duration"`

	// Err is the underlying error of a rejected, not found, or failed record.
	Err error `json:"-" yaml:"-"`
}

func (o *Outcome) skip(state State, reason errors.Reason, err error) {
	o.State = state
	o.Reason = reason
	o.setErr(err)
}

func (o *Outcome) fail(err error) {
	o.State = StateFailed
	o.Reason = ""
	o.setErr(err)
}

func (o *Outcome) setErr(err error) {
	o.Err = err
	if err != nil {
		o.Error = err.Error()
	}
}
