// Package kolado keeps the customers of a target accounting ledger in sync
// with the contacts of a source contact directory.
//
// A run fetches every source contact once. Each contact is validated for a
// CPF or CNPJ custom field, mapped to its cross-system key, looked up in the
// ledger and, when found, merged into the ledger customer and written back.
// Per-record failures never abort a run; they are tallied in the report.
//
// Example usage:
//
//	client, err := kolado.New(kolado.Config{
//	    SourceAPIURL:    "https://api.octadesk.services/contacts",
//	    SourceAPIKey:    os.Getenv("OCTADESK_API_KEY"),
//	    TargetAPIURL:    "https://app.omie.com.br/api/v1/geral/clientes/",
//	    TargetAppKey:    os.Getenv("OMIE_APP_KEY"),
//	    TargetAppSecret: os.Getenv("OMIE_APP_SECRET"),
//	}, kolado.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnFailed(func(o reconciler.Outcome) {
//	    log.Printf("contact %s failed: %v", o.ContactID, o.Err)
//	})
//
//	report, err := client.Run(ctx)
//	if err != nil {
//	    log.Fatal(err) // source batch could not be fetched
//	}
//	fmt.Println(report.Summary())
package kolado

import (
	"context"

	"github.com/GustavoBertuzzi/API-Kolado/internal/directory"
	"github.com/GustavoBertuzzi/API-Kolado/internal/ledger"
	"github.com/GustavoBertuzzi/API-Kolado/internal/metrics"
	"github.com/GustavoBertuzzi/API-Kolado/internal/transport"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/identity"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/validator"
)

// Config holds the endpoints and credentials of both systems. It is built
// once at startup and passed by value to the clients.
type Config struct {
	SourceAPIURL    string `mapstructure:"source_api_url" yaml:"source_api_url"`
	SourceAPIKey    string `mapstructure:"source_api_key" yaml:"source_api_key"`
	TargetAPIURL    string `mapstructure:"target_api_url" yaml:"target_api_url"`
	TargetAppKey    string `mapstructure:"target_app_key" yaml:"target_app_key"`
	TargetAppSecret string `mapstructure:"target_app_secret" yaml:"target_app_secret"`
}

// Validate returns a *errors.ConfigError naming every missing option.
func (c Config) Validate() error {
	return c.validate(true, true)
}

func (c Config) validate(source, target bool) error {
	var missing []string
	if source {
		if c.SourceAPIURL == "" {
			missing = append(missing, "source_api_url")
		}
		if c.SourceAPIKey == "" {
			missing = append(missing, "source_api_key")
		}
	}
	if target {
		if c.TargetAPIURL == "" {
			missing = append(missing, "target_api_url")
		}
		if c.TargetAppKey == "" {
			missing = append(missing, "target_app_key")
		}
		if c.TargetAppSecret == "" {
			missing = append(missing, "target_app_secret")
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &errors.ConfigError{
		Component: "kolado",
		Message:   "required options are not set",
		Missing:   missing,
	}
}

// Client runs syncs between the source directory and the target ledger.
type Client interface {
	// Run performs one full sync. Only a source fetch failure is returned as
	// an error; every per-record failure is part of the report.
	Run(ctx context.Context) (*reconciler.Report, error)

	// Check fetches the source batch and validates it without touching the
	// target ledger.
	Check(ctx context.Context) (*reconciler.Report, error)

	// Hooks provides access to outcome callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	options    *options
	hooks      *hooks
	metrics    *metrics.Recorder
	reconciler *reconciler.Reconciler
}

// New creates a Client from cfg. Options that inject a directory or ledger
// make the matching part of cfg optional.
func New(cfg Config, opts ...Option) (Client, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(options.directory == nil, options.ledger == nil); err != nil {
		return nil, err
	}

	var transportOpts []transport.Option
	if options.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithHTTPClient(options.httpClient))
	}
	if options.httpTimeout > 0 {
		transportOpts = append(transportOpts, transport.WithTimeout(options.httpTimeout))
	}

	dir := options.directory
	if dir == nil {
		dir = directory.New(cfg.SourceAPIURL, cfg.SourceAPIKey, transportOpts...)
	}
	led := options.ledger
	if led == nil {
		led = ledger.New(cfg.TargetAPIURL, cfg.TargetAppKey, cfg.TargetAppSecret, transportOpts...)
	}

	c := &client{
		options: options,
		hooks:   newHooks(),
		metrics: options.metrics,
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	c.reconciler, err = reconciler.New(dir, led,
		reconciler.WithValidator(validator.New(validator.WithCheckDigits(options.checkDigits))),
		reconciler.WithResolver(identity.NewResolver(options.keyPrefix)),
		reconciler.WithMerger(options.merger()),
		reconciler.WithWorkers(options.workers),
		reconciler.WithDryRun(options.dryRun),
		reconciler.WithForceUpdate(options.forceUpdate),
		reconciler.WithObserver(c.hooks, c.metrics),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Run performs one full sync and publishes its metrics.
func (c *client) Run(ctx context.Context) (*reconciler.Report, error) {
	report, err := c.reconciler.Run(ctx)
	c.finish(ctx, report, err)
	return report, err
}

// Check validates the source batch only.
func (c *client) Check(ctx context.Context) (*reconciler.Report, error) {
	report, err := c.reconciler.Check(ctx)
	c.finish(ctx, report, err)
	return report, err
}

func (c *client) finish(ctx context.Context, report *reconciler.Report, err error) {
	c.metrics.ObserveRun(report, err)

	if c.options.pushgatewayURL == "" {
		return
	}
	// A canceled run still publishes what it recorded.
	pushCtx := context.WithoutCancel(ctx)
	if pushErr := c.metrics.Push(pushCtx, c.options.pushgatewayURL, c.options.metricsJob); pushErr != nil {
		logging.Ctx(ctx).Warn().Err(pushErr).Msg("failed to push metrics")
	}
}
