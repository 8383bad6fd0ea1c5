package reconciler

import (
	"fmt"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/identity"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/merge"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/validator"
)

// Options configures a reconciler.
type options struct {
	validator   Validator
	resolver    Resolver
	merger      Merger
	workers     int
	dryRun      bool
	forceUpdate bool
	observers   []Observer
}

func defaultOptions() *options {
	return &options{
		validator: validator.New(),
		resolver:  identity.NewResolver(constants.DefaultKeyPrefix),
		merger:    merge.New(),
		workers:   constants.DefaultWorkers,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithValidator sets the contact validator.
func WithValidator(v Validator) Option {
	return func(o *options) error {
		if v == nil {
			return &errors.ValidationError{Field: "validator", Message: "cannot be nil"}
		}
		o.validator = v
		return nil
	}
}

// WithResolver sets the cross-system key resolver.
func WithResolver(r Resolver) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{Field: "resolver", Message: "cannot be nil"}
		}
		o.resolver = r
		return nil
	}
}

// WithMerger sets the merge engine.
func WithMerger(m Merger) Option {
	return func(o *options) error {
		if m == nil {
			return &errors.ValidationError{Field: "merger", Message: "cannot be nil"}
		}
		o.merger = m
		return nil
	}
}

// WithWorkers sets how many records are processed concurrently.
// One worker processes the batch sequentially.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxWorkers {
			return &errors.ValidationError{
				Field:   "workers",
				Value:   n,
				Message: fmt.Sprintf("must be between 1 and %d", constants.MaxWorkers),
			}
		}
		o.workers = n
		return nil
	}
}

// WithDryRun computes merges without sending updates.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithForceUpdate sends an update even when the merge changed nothing.
func WithForceUpdate(enabled bool) Option {
	return func(o *options) error {
		o.forceUpdate = enabled
		return nil
	}
}

// WithObserver registers observers notified of every record outcome.
// Observers are called from worker goroutines when more than one worker runs.
func WithObserver(observers ...Observer) Option {
	return func(o *options) error {
		for _, obs := range observers {
			if obs != nil {
				o.observers = append(o.observers, obs)
			}
		}
		return nil
	}
}
