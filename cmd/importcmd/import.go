// Package importcmd contains the import subcommand.
package importcmd

import (
	"encoding/json"
	"fmt"
	"os"

	"ledgerline/bankimport/cmd/root"
	"ledgerline/bankimport/internal/common"
	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/importer"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/store"

	"github.com/spf13/cobra"
)

var (
	inputFile   string
	profileFile string
	userID      string
	contentType string
	outputFile  string
	dryRun      bool
)

// Cmd is the import command.
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import a statement file",
	Long: `Import reads a statement file, classifies every record using the mapping
profile and stores the resulting transactions. With --dry-run the whole
pipeline runs but nothing is persisted.`,
	RunE: runImport,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "statement file to import")
	Cmd.Flags().StringVarP(&profileFile, "profile", "p", "", "YAML import profile")
	Cmd.Flags().StringVarP(&userID, "user", "u", "", "user the transactions belong to")
	Cmd.Flags().StringVar(&contentType, "content-type", "", "declared content type of the file")
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write created transactions to this CSV file")
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without persisting anything")
	_ = Cmd.MarkFlagRequired("input")
	_ = Cmd.MarkFlagRequired("profile")
	_ = Cmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogrusAdapterFromLogger(root.Log)

	appConfig, err := config.InitializeConfig()
	if err != nil {
		return err
	}

	profile, err := config.LoadProfile(profileFile)
	if err != nil {
		return err
	}
	if dryRun {
		profile.DryRun = true
	}

	data, err := os.ReadFile(inputFile) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}

	txStore, err := store.OpenSQLite(appConfig.Store.Path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := txStore.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close store")
		}
	}()

	result, err := importer.New(txStore, logger).Import(cmd.Context(), importer.Request{
		UserID:      userID,
		FileName:    inputFile,
		ContentType: contentType,
		Data:        data,
		Profile:     profile,
	})
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	fmt.Println(string(encoded))

	if outputFile != "" && len(result.Created) > 0 {
		delimiter := []rune(appConfig.CSV.Delimiter)[0]
		if err := common.WriteTransactionsToCSV(result.Created, outputFile, delimiter, logger); err != nil {
			return err
		}
	}

	return nil
}
