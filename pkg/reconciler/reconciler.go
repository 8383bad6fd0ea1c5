// Package reconciler drives a sync run: it fetches the source contacts once,
// then for every contact validates it, resolves its cross-system key, looks up
// the target customer, merges and applies the update.
//
// Failures are isolated per record. A rejected, unmatched or failed record
// becomes an Outcome in the Report and processing moves on; only a failure to
// fetch the source batch aborts the run.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/merge"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/records"
)

// Directory yields the full set of source contacts for a run.
type Directory interface {
	ListAll(ctx context.Context) ([]records.Contact, error)
}

// Ledger looks up and updates target customers.
type Ledger interface {
	// LookupByIntegrationCode returns the first customer registered under key.
	// No match is ok == false with a nil error.
	LookupByIntegrationCode(ctx context.Context, key records.Key) (records.Customer, bool, error)

	// Update writes a full, already merged customer back.
	Update(ctx context.Context, customer records.Customer) error
}

// Validator checks one contact.
type Validator interface {
	Validate(contact records.Contact) (records.Validated, error)
}

// Resolver derives the cross-system key of a contact.
type Resolver interface {
	Resolve(contact records.Contact) records.Key
}

// Merger merges a validated contact into a target customer.
type Merger interface {
	Merge(source records.Validated, target records.Customer) merge.Result
}

// Observer is notified of every record outcome.
type Observer interface {
	Observe(ctx context.Context, outcome Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, outcome Outcome)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, outcome Outcome) {
	f(ctx, outcome)
}

// Reconciler runs sync batches.
type Reconciler struct {
	directory Directory
	ledger    Ledger
	opts      *options
}

// New creates a Reconciler reading from directory and writing to ledger.
func New(directory Directory, ledger Ledger, opts ...Option) (*Reconciler, error) {
	if directory == nil {
		return nil, &errors.ValidationError{Field: "directory", Message: "cannot be nil"}
	}
	if ledger == nil {
		return nil, &errors.ValidationError{Field: "ledger", Message: "cannot be nil"}
	}

	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		directory: directory,
		ledger:    ledger,
		opts:      options,
	}, nil
}

// Run performs one full sync. A completed run always returns a finalized
// report and a nil error, however many records were skipped or failed. When
// the source batch cannot be fetched, Run returns an empty finalized report
// and the *errors.FetchError.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	return r.run(ctx, false)
}

// Check fetches the source batch and validates every contact without calling
// the target ledger. Eligible contacts end in StateEligible.
func (r *Reconciler) Check(ctx context.Context) (*Report, error) {
	return r.run(ctx, true)
}

func (r *Reconciler) run(ctx context.Context, checkOnly bool) (*Report, error) {
	report := NewReport()
	report.DryRun = r.opts.dryRun && !checkOnly
	report.CheckOnly = checkOnly

	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.Ctx(ctx)

	logger.Info().
		Bool("dry_run", report.DryRun).
		Bool("check_only", checkOnly).
		Int("workers", r.opts.workers).
		Msg("sync run started")

	contacts, err := r.directory.ListAll(ctx)
	if err != nil {
		if !errors.IsFetchError(err) {
			err = errors.NewFetchError("", err)
		}
		report.Finalize()
		logger.Error().Err(err).Msg("source fetch failed, run aborted")
		return report, err
	}

	report.begin(len(contacts))
	r.process(ctx, contacts, report, checkOnly)
	report.Finalize()

	logger.Info().
		Int("fetched", report.Fetched).
		Int("synced", report.Synced).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("sync run completed")

	return report, nil
}

// process runs every contact through the pipeline with at most
// opts.workers records in flight.
func (r *Reconciler) process(ctx context.Context, contacts []records.Contact, report *Report, checkOnly bool) {
	workers := min(r.opts.workers, len(contacts))

	if workers <= 1 {
		for i, c := range contacts {
			r.finish(ctx, report, r.handle(ctx, i, c, checkOnly))
		}
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i, c := range contacts {
		wg.Add(1)
		go func(index int, contact records.Contact) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			r.finish(ctx, report, r.handle(ctx, index, contact, checkOnly))
		}(i, c)
	}

	wg.Wait()
}

func (r *Reconciler) finish(ctx context.Context, report *Report, outcome Outcome) {
	report.record(outcome)
	for _, obs := range r.opts.observers {
		obs.Observe(ctx, outcome)
	}
}

// handle takes one contact to a terminal state. It never panics.
func (r *Reconciler) handle(ctx context.Context, index int, contact records.Contact, checkOnly bool) (out Outcome) {
	start := time.Now()
	out = Outcome{Index: index, ContactID: contact.ID}
	ctx = logging.WithContact(ctx, contact.ID)

	defer func() {
		if p := recover(); p != nil {
			out.fail(fmt.Errorf("panic while processing contact %s: %v", contact.ID, p))
		}
		out.Duration = time.Since(start)
		logOutcome(logging.Ctx(ctx), out)
	}()

	if err := ctx.Err(); err != nil {
		out.fail(fmt.Errorf("%w: %w", errors.ErrCanceled, err))
		return out
	}

	validated, err := r.opts.validator.Validate(contact)
	if err != nil {
		if !errors.IsRejection(err) {
			out.fail(err)
			return out
		}
		out.skip(StateRejected, errors.ReasonOf(err), err)
		return out
	}
	if contact.ID == "" {
		out.skip(StateRejected, errors.ReasonMissingContactID,
			errors.NewRejectionError("", errors.ReasonMissingContactID))
		return out
	}

	key := r.opts.resolver.Resolve(validated.Contact)
	out.Key = key
	ctx = logging.WithIntegrationCode(ctx, key.String())

	if checkOnly {
		out.State = StateEligible
		return out
	}

	customer, found, err := r.ledger.LookupByIntegrationCode(ctx, key)
	if err != nil {
		out.fail(err)
		return out
	}
	if !found {
		out.skip(StateNotFound, errors.ReasonNotFound,
			fmt.Errorf("%w: no target customer with integration code %s", errors.ErrNotFound, key))
		return out
	}
	out.TargetCode = customer.TargetCode()

	result := r.opts.merger.Merge(validated, customer)
	out.Changes = result.Changes

	switch {
	case !result.Changed() && !r.opts.forceUpdate:
		out.State = StateUnchanged
		return out
	case r.opts.dryRun:
		out.State = StatePlanned
		return out
	}

	if err := r.ledger.Update(ctx, result.Customer); err != nil {
		out.fail(err)
		return out
	}
	out.State = StateApplied
	return out
}

func logOutcome(logger *zerolog.Logger, o Outcome) {
	var event *zerolog.Event
	switch o.State {
	case StateApplied:
		event = logger.Info()
	case StateRejected, StateNotFound:
		event = logger.Warn()
	case StateFailed:
		event = logger.Error().Err(o.Err).Str("failure", failureKind(o.Err))
	default:
		event = logger.Debug()
	}

	event.
		Str("state", string(o.State)).
		Dur("elapsed", o.Duration)
	if o.Reason != "" {
		event.Str("reason", o.Reason.String())
	}
	if o.TargetCode != "" {
		event.Str("target_code", o.TargetCode)
	}
	if len(o.Changes) > 0 {
		event.Int("changes", len(o.Changes))
	}
	if o.State == StateRejected || o.State == StateNotFound {
		event.Str("detail", o.Error)
	}
	event.Msg("record processed")
}

// failureKind classifies a failed outcome for the log.
func failureKind(err error) string {
	switch {
	case errors.IsTargetError(err) && errors.IsUnreachable(err):
		return "unreachable"
	case errors.IsTargetError(err):
		return "rejected"
	case errors.Is(err, errors.ErrCanceled):
		return "canceled"
	default:
		return "internal"
	}
}
