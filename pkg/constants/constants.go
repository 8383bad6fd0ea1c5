// Package constants provides shared constants used throughout the kolado codebase.
// This includes timeouts, limits, remote call names, and identifier rules that
// must stay identical between the validator, the resolver and the API clients.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to either API
	DefaultHTTPTimeout = 30 * time.Second

	// RunTimeout bounds a whole sync run started from the CLI
	RunTimeout = 30 * time.Minute

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second

	// PushTimeout bounds the Pushgateway push at the end of a run
	PushTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// DefaultWorkers processes the batch sequentially
	DefaultWorkers = 1

	// MaxWorkers caps the worker pool to keep the target ledger's rate limits intact
	MaxWorkers = 16

	// MaxResponseBodySize is the most bytes read from any API response
	MaxResponseBodySize = 10 << 20
)

// Fiscal identifier rules
const (
	// CPFLength is the digit count of an individual taxpayer identifier
	CPFLength = 11

	// CNPJLength is the digit count of an entity taxpayer identifier
	CNPJLength = 14
)

// FiscalFieldKeywords are matched case-insensitively against custom field keys.
var FiscalFieldKeywords = []string{"cpf", "cnpj"}

// Cross-system identity
const (
	// DefaultKeyPrefix is prepended to the source contact id to form the integration code
	DefaultKeyPrefix = "CodigoInterno"
)

// Merge policy
const (
	// EmailSeparator joins accumulated target e-mail addresses
	EmailSeparator = ";"
)

// Remote API details
const (
	// SourceAPIKeyHeader carries the source directory API key
	SourceAPIKeyHeader = "X-API-KEY"

	// CallListCustomers is the target ledger call that looks customers up
	CallListCustomers = "ListarClientes"

	// CallUpdateCustomer is the target ledger call that rewrites one customer
	CallUpdateCustomer = "AlterarCliente"
)

// Logging
const (
	// ServiceName is the service field attached to every log entry
	ServiceName = "kolado"
)

// Metrics
const (
	// MetricsNamespace prefixes every exported metric
	MetricsNamespace = "kolado"

	// DefaultMetricsJob is the Pushgateway job name for sync runs
	DefaultMetricsJob = "kolado_sync"
)
