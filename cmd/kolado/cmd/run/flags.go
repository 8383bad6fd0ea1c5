package run

import (
	"github.com/spf13/cobra"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
)

// Flags holds the run command flags.
type Flags struct {
	DryRun             bool
	ForceUpdate        bool
	VerifyCheckDigits  bool
	StrictEmailCompare bool
	LiteralMerge       bool
	FailOnError        bool
	Workers            int

	// workersSet is true when --workers was given, so the configured
	// worker count applies otherwise.
	workersSet bool
}

func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "compute changes without updating target customers")
	cmd.Flags().BoolVar(&flags.ForceUpdate, "force-update", false, "update target customers even when nothing changed")
	cmd.Flags().BoolVar(&flags.VerifyCheckDigits, "verify-check-digits", false, "reject CPF/CNPJ values with invalid check digits")
	cmd.Flags().BoolVar(&flags.StrictEmailCompare, "strict-email-compare", false, "append the source email whenever it differs from the whole target email")
	cmd.Flags().BoolVar(&flags.LiteralMerge, "literal-merge", false, "apply source values as received, empty ones included")
	cmd.Flags().BoolVar(&flags.FailOnError, "fail-on-error", false, "exit with status 1 when any record failed")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", constants.DefaultWorkers, "records processed concurrently")

	return flags
}
