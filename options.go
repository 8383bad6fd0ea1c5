package kolado

import (
	"fmt"
	"net/http"
	"time"

	"github.com/GustavoBertuzzi/API-Kolado/internal/metrics"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/merge"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

// options holds the run tuning of a client.
type options struct {
	httpClient  *http.Client
	httpTimeout time.Duration
	keyPrefix   string
	workers     int
	dryRun      bool
	forceUpdate bool
	checkDigits bool
	strictEmail bool
	literal     bool

	pushgatewayURL string
	metricsJob     string
	metrics        *metrics.Recorder

	directory reconciler.Directory
	ledger    reconciler.Ledger
}

// merger builds the merge engine for the configured policies.
func (o *options) merger() *merge.Engine {
	if o.literal {
		return merge.New(merge.WithLiteralMerge())
	}
	return merge.New(merge.WithStrictEmailCompare(o.strictEmail))
}

func defaultOptions() *options {
	return &options{
		httpTimeout: constants.DefaultHTTPTimeout,
		keyPrefix:   constants.DefaultKeyPrefix,
		workers:     constants.DefaultWorkers,
		metricsJob:  constants.DefaultMetricsJob,
	}
}

// Option is a function that configures a Client.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithHTTPClient sets the http.Client used for both remote APIs.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		o.httpClient = hc
		return nil
	}
}

// WithHTTPTimeout sets the per-request timeout for both remote APIs.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &errors.ValidationError{Field: "http_timeout", Value: d, Message: "must be positive"}
		}
		o.httpTimeout = d
		return nil
	}
}

// WithKeyPrefix sets the prefix of cross-system keys.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) error {
		if prefix == "" {
			return &errors.ValidationError{Field: "key_prefix", Message: "cannot be empty"}
		}
		o.keyPrefix = prefix
		return nil
	}
}

// WithWorkers sets how many records are processed concurrently.
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

// WithForceUpdate sends updates even when nothing changed.
func WithForceUpdate(enabled bool) Option {
	return func(o *options) error {
		o.forceUpdate = enabled
		return nil
	}
}

// WithCheckDigits rejects identifiers whose CPF/CNPJ check digits are wrong.
func WithCheckDigits(enabled bool) Option {
	return func(o *options) error {
		o.checkDigits = enabled
		return nil
	}
}

// WithStrictEmailCompare appends the source email whenever it differs from
// the whole target email string, even if it is already one of its entries.
func WithStrictEmailCompare(enabled bool) Option {
	return func(o *options) error {
		o.strictEmail = enabled
		return nil
	}
}

// WithLiteralMerge applies source values exactly as received: an empty
// display name clears the target name and every differing email is appended,
// empty or not. It implies WithStrictEmailCompare.
func WithLiteralMerge(enabled bool) Option {
	return func(o *options) error {
		o.literal = enabled
		return nil
	}
}

// WithPushgateway pushes run metrics to a Prometheus Pushgateway after each
// run. An empty job uses constants.DefaultMetricsJob.
func WithPushgateway(url, job string) Option {
	return func(o *options) error {
		o.pushgatewayURL = url
		if job != "" {
			o.metricsJob = job
		}
		return nil
	}
}

// WithMetrics sets the metrics recorder, e.g. to share one registry.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(o *options) error {
		o.metrics = rec
		return nil
	}
}

// WithDirectory replaces the HTTP source directory client.
func WithDirectory(d reconciler.Directory) Option {
	return func(o *options) error {
		o.directory = d
		return nil
	}
}

// WithLedger replaces the HTTP target ledger client.
func WithLedger(l reconciler.Ledger) Option {
	return func(o *options) error {
		o.ledger = l
		return nil
	}
}
