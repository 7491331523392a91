package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/capsa/internal/app"
)

var askMaxResults int

var askCmd = &cobra.Command{
	Use:   "ask \"question\"",
	Short: "Ask a one-shot question against the stored items",
	Long: `Rebuilds the vector index from the record store, answers the question, and
prints the answer with its sources.

The record store is single-process: stop a running serve instance first.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askMaxResults, "max-results", "k", 0,
		"number of chunks to retrieve (0 = config default)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	config, logger, err := bootstrap()
	if err != nil {
		return err
	}

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	if err := application.RebuildIndex(cmd.Context()); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	answer, err := application.AnswerService.Answer(cmd.Context(), args[0], askMaxResults)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)

	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for i, citation := range answer.Citations {
			source := string(citation.SourceKind)
			if citation.OriginURL != "" {
				source = citation.OriginURL
			}
			fmt.Printf("%3d. [%.2f] %s\n", i+1, citation.Score, source)
			fmt.Printf("      %s\n", citation.Snippet)
		}
	}

	return nil
}
