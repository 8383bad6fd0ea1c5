// Package errors provides custom error types for the kolado sync system.
// These errors separate the three failure classes of a sync run: local record
// rejections, per-record target ledger failures, and the fatal source fetch
// failure that aborts a run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the kolado system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnreachable indicates a transport failure talking to a remote API
	ErrUnreachable = errors.New("unreachable")

	// ErrRejected indicates a remote API answered with a non-success response
	ErrRejected = errors.New("rejected")

	// ErrFetch indicates the source batch could not be retrieved
	ErrFetch = errors.New("fetch failed")

	// ErrConfig indicates invalid or incomplete configuration
	ErrConfig = errors.New("configuration invalid")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// Reason classifies why a record was skipped.
type Reason string

// String returns the reason as a string.
func (r Reason) String() string {
	return string(r)
}

const (
	// ReasonMissingIdentifier means no custom field carries a CPF or CNPJ.
	ReasonMissingIdentifier Reason = "MissingIdentifier"

	// ReasonInvalidIdentifierLength means the digits-only identifier is neither 11 nor 14 long.
	ReasonInvalidIdentifierLength Reason = "InvalidIdentifierLength"

	// ReasonInvalidIdentifierChecksum means the identifier check digits do not verify.
	ReasonInvalidIdentifierChecksum Reason = "InvalidIdentifierChecksum"

	// ReasonMissingContactID means the source record has no id to derive a key from.
	ReasonMissingContactID Reason = "MissingContactID"

	// ReasonNotFound means the target ledger has no record for the cross-system key.
	ReasonNotFound Reason = "NotFound"
)

// RejectionError is returned by the validator when a source record is unfit for sync.
type RejectionError struct {
	ContactID string
	Reason    Reason
	Field     string // custom field key the identifier was read from, if any
	Value     string // raw value that failed normalization, if any
}

// Error implements the error interface
func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonMissingIdentifier:
		return fmt.Sprintf("contact %s has no CPF or CNPJ custom field", e.ContactID)
	case ReasonInvalidIdentifierLength:
		return fmt.Sprintf("contact %s has an invalid CPF or CNPJ length in field %q", e.ContactID, e.Field)
	case ReasonInvalidIdentifierChecksum:
		return fmt.Sprintf("contact %s has a CPF or CNPJ with invalid check digits in field %q", e.ContactID, e.Field)
	case ReasonMissingContactID:
		return "contact has no id"
	default:
		return fmt.Sprintf("contact %s rejected: %s", e.ContactID, e.Reason)
	}
}

// Is implements errors.Is support
func (e *RejectionError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewRejectionError creates a new RejectionError
func NewRejectionError(contactID string, reason Reason) *RejectionError {
	return &RejectionError{ContactID: contactID, Reason: reason}
}

// TargetErrorKind tells a transport failure apart from a refused request.
type TargetErrorKind string

const (
	// TargetUnreachable is a transport failure (DNS, connect, timeout, reset).
	TargetUnreachable TargetErrorKind = "Unreachable"

	// TargetRejected is a non-2xx or undecodable response from the target ledger.
	TargetRejected TargetErrorKind = "Rejected"
)

// TargetError represents a failed call to the target ledger for one record.
type TargetError struct {
	Kind            TargetErrorKind
	Operation       string // remote call name, e.g. ListarClientes
	IntegrationCode string
	StatusCode      int
	Body            string
	Err             error
}

// Error implements the error interface
func (e *TargetError) Error() string {
	if e.Kind == TargetRejected {
		if e.StatusCode != 0 {
			return fmt.Sprintf("target %s rejected for %s (status %d): %s", e.Operation, e.IntegrationCode, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("target %s rejected for %s: %v", e.Operation, e.IntegrationCode, e.Err)
	}
	return fmt.Sprintf("target %s unreachable for %s: %v", e.Operation, e.IntegrationCode, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TargetError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TargetError) Is(target error) bool {
	switch e.Kind {
	case TargetUnreachable:
		return target == ErrUnreachable
	case TargetRejected:
		return target == ErrRejected
	}
	return false
}

// NewUnreachableError creates a TargetError for a transport failure
func NewUnreachableError(operation, integrationCode string, err error) *TargetError {
	return &TargetError{
		Kind:            TargetUnreachable,
		Operation:       operation,
		IntegrationCode: integrationCode,
		Err:             err,
	}
}

// NewRejectedError creates a TargetError for a non-success response
func NewRejectedError(operation, integrationCode string, statusCode int, body string) *TargetError {
	return &TargetError{
		Kind:            TargetRejected,
		Operation:       operation,
		IntegrationCode: integrationCode,
		StatusCode:      statusCode,
		Body:            body,
	}
}

// FetchError represents a failure to retrieve the source batch. It is fatal to a run.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching source contacts from %s failed (status %d): %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetching source contacts from %s failed: %v", e.URL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// ValidationError represents an invalid argument or option value
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a non-success HTTP response from a remote API
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	return target == ErrRejected
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Missing   []string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := e.Message
	if len(e.Missing) > 0 {
		msg = fmt.Sprintf("%s (missing: %v)", msg, e.Missing)
	}
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, msg)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when decoding a response payload
type ParseError struct {
	Format  string // "json", "yaml"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, source, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRejection checks if an error is a validator rejection
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}

// IsTargetError checks if an error came from the target ledger
func IsTargetError(err error) bool {
	var te *TargetError
	return errors.As(err, &te)
}

// IsUnreachable checks if an error is a transport failure
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// IsRejected checks if a remote API refused the request
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

// IsFetchError checks if an error is the fatal source fetch failure
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// ReasonOf returns the skip reason carried by err, or "" when it carries none.
func ReasonOf(err error) Reason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	if IsNotFound(err) {
		return ReasonNotFound
	}
	return ""
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, source, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

// WrapConfig wraps an error as a ConfigError
func WrapConfig(component string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigError(component, err.Error(), err)
}
