// Package validate contains the validate subcommand.
package validate

import (
	"ledgerline/bankimport/cmd/root"
	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/formats"
	"ledgerline/bankimport/internal/models"

	"github.com/spf13/cobra"
)

var (
	profileFile string
	inputFile   string
)

// Cmd is the validate command.
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an import profile",
	Long: `Validate loads a YAML import profile and runs the same fatal-path checks
an import would, without touching the transaction store.`,
	RunE: runValidate,
}

func init() {
	Cmd.Flags().StringVarP(&profileFile, "profile", "p", "", "YAML import profile")
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "statement file name used to resolve the format")
	_ = Cmd.MarkFlagRequired("profile")
}

func runValidate(cmd *cobra.Command, args []string) error {
	profile, err := config.LoadProfile(profileFile)
	if err != nil {
		return err
	}

	format := models.Format("")
	if profile.FormatHint() != models.FormatAuto || inputFile != "" {
		format, err = formats.Resolve(profile.FormatHint(), inputFile, "")
		if err != nil {
			return err
		}
	}

	if err := profile.Validate(format); err != nil {
		return err
	}

	root.Log.WithField("profile", profileFile).Info("Profile is valid")
	return nil
}
