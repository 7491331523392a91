package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/capsa/internal/app"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-ingest items from a YAML seed file",
	Long: `Reads a YAML file of items and ingests each through the normal pipeline:

  - kind: note
    content: The sky is blue.
  - kind: url
    url: https://example.com/article

Per-entry failures are reported and do not abort the run. The record store
is single-process: stop a running serve instance first.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "seed.yaml", "seed file path")
}

func runImport(cmd *cobra.Command, args []string) error {
	config, logger, err := bootstrap()
	if err != nil {
		return err
	}

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	result, err := application.IngestService.ImportFile(cmd.Context(), importFile)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d item(s), %d failed\n", result.Ingested, result.Failed)
	for _, message := range result.Errors {
		fmt.Printf("  - %s\n", message)
	}

	return nil
}
