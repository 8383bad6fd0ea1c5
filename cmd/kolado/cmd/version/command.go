// Package version provides the version command.
package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/GustavoBertuzzi/API-Kolado/cmd/application"
	"github.com/GustavoBertuzzi/API-Kolado/internal/output"
)

// Info is the build information printed by the version command.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewCommand creates the version command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Write(cmd.OutOrStdout(), app)
		},
	}
}

// Write prints the build information of app. Plain text is used unless
// json or yaml is requested explicitly.
func Write(w io.Writer, app application.Application) error {
	info := Info{
		Version:   app.Version(),
		Commit:    app.Commit(),
		Date:      app.Date(),
		BuiltBy:   app.BuiltBy(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == output.FormatJSON || format == output.FormatYAML {
		return output.NewFormatter(format).Format(w, info)
	}

	_, err = fmt.Fprintf(w, "kolado version %s\ncommit: %s\nbuilt: %s\nbuilt by: %s\ngo version: %s\nplatform: %s\n",
		info.Version, info.Commit, info.Date, info.BuiltBy, info.GoVersion, info.Platform)
	return err
}
