// Package application provides the application interface for kolado commands.
//
// Commands accept this interface rather than the concrete App type so they
// can be tested with the Mock in this package:
//
//	mock := &application.Mock{
//	    ClientFunc: func(...kolado.Option) (kolado.Client, error) {
//	        return fakeClient, nil
//	    },
//	}
//	cmd := run.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/GustavoBertuzzi/API-Kolado"
)

// Application provides what commands need from the running CLI.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns a sync client built from the loaded configuration.
	// Options are applied after the configured ones, so they win.
	Client(opts ...kolado.Option) (kolado.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	// Empty means auto-detect.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
