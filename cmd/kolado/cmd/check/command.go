// Package check provides the check command, which validates the source
// contacts without calling the target ledger.
package check

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
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

// ErrRecordsRejected is returned with --fail-on-rejected when any contact
// is unfit for sync.
var ErrRecordsRejected = errors.New("records rejected")

// Flags holds the check command flags.
type Flags struct {
	VerifyCheckDigits bool
	FailOnRejected    bool
	RejectedOnly      bool
}

// NewCommand creates the check command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate source contacts without touching the target",
		Args:  cobra.NoArgs,
		Long: `Check fetches every source contact and reports which ones would be
rejected for a missing or malformed CPF/CNPJ custom field. The target
ledger is never called.`,
		Example: `  kolado check                        # Report eligible and rejected contacts
  kolado check --rejected-only        # Only list rejected contacts
  kolado check --verify-check-digits  # Also verify CPF/CNPJ check digits`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&flags.VerifyCheckDigits, "verify-check-digits", false, "reject CPF/CNPJ values with invalid check digits")
	cmd.Flags().BoolVar(&flags.FailOnRejected, "fail-on-rejected", false, "exit with status 1 when any contact is rejected")
	cmd.Flags().BoolVar(&flags.RejectedOnly, "rejected-only", false, "list only rejected contacts")

	return cmd
}

// Execute validates the source batch and writes the report to w.
func Execute(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	var opts []kolado.Option
	if flags.VerifyCheckDigits {
		opts = append(opts, kolado.WithCheckDigits(true))
	}

	client, err := app.Client(opts...)
	if err != nil {
		return err
	}

	report, err := client.Check(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Check aborted")
		return err
	}

	rejected := report.States[reconciler.StateRejected]
	if flags.RejectedOnly {
		report.Entries = report.Filter(reconciler.StateRejected)
	}

	if err := output.WriteReport(w, output.DetectFormat(string(format)), report); err != nil {
		return err
	}

	if flags.FailOnRejected && rejected > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRecordsRejected, rejected, report.Fetched)
	}
	return nil
}
