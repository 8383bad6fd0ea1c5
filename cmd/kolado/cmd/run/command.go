// Package run provides the run command, one full sync of source contacts
// into target customers.
package run

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kolado "github.com/GustavoBertuzzi/API-Kolado"
	"github.com/GustavoBertuzzi/API-Kolado/cmd/application"
	"github.com/GustavoBertuzzi/API-Kolado/internal/output"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
)

// ErrRecordsFailed is returned with --fail-on-error when any record failed.
var ErrRecordsFailed = errors.New("records failed")

// NewCommand creates the run command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync source contacts into target customers",
		Args:  cobra.NoArgs,
		Long: `Run fetches every source contact once and, for each contact with a
CPF or CNPJ custom field, updates the matching target customer's name and
email. Records that cannot be synced are skipped or marked failed in the
report; only a failure to fetch the source contacts aborts the run.`,
		Example: `  kolado run                          # Sync all contacts
  kolado run --dry-run -o table       # Preview changes
  kolado run --workers 4              # Process 4 records at a time
  kolado run --fail-on-error          # Exit 1 when any record failed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.workersSet = cmd.Flags().Changed("workers")
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	flags = addFlags(cmd)

	return cmd
}

// Execute performs the sync and writes the report to w.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	client, err := app.Client(BuildOptions(flags)...)
	if err != nil {
		return err
	}

	report, err := client.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Sync aborted")
		return err
	}

	if err := output.WriteReport(w, output.DetectFormat(string(format)), report); err != nil {
		return err
	}

	logger.Info().
		Str("run_id", report.RunID).
		Int("fetched", report.Fetched).
		Int("synced", report.Synced).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg(report.Summary())

	if flags.FailOnError && report.HasFailures() {
		return fmt.Errorf("%w: %d of %d", ErrRecordsFailed, report.Failed, report.Fetched)
	}
	return nil
}

// BuildOptions creates client options from the run flags.
func BuildOptions(flags *Flags) []kolado.Option {
	var opts []kolado.Option

	if flags.DryRun {
		opts = append(opts, kolado.WithDryRun(true))
	}
	if flags.ForceUpdate {
		opts = append(opts, kolado.WithForceUpdate(true))
	}
	if flags.VerifyCheckDigits {
		opts = append(opts, kolado.WithCheckDigits(true))
	}
	if flags.StrictEmailCompare {
		opts = append(opts, kolado.WithStrictEmailCompare(true))
	}
	if flags.LiteralMerge {
		opts = append(opts, kolado.WithLiteralMerge(true))
	}
	if flags.workersSet {
		opts = append(opts, kolado.WithWorkers(flags.Workers))
	}

	return opts
}
