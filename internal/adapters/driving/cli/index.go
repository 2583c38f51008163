package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the knowledge index",
	Long: `Chunks the configured corpus, generates embeddings, and caches
the result. A corpus that has not changed since the last build restores
the index from cache without calling the embedding provider.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil || loadSources == nil {
		return errors.New("knowledge service not configured")
	}

	if err := buildIndex(cmd.Context()); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	cmd.Printf("Index ready: %d chunks\n", knowledgeService.Size())
	return nil
}
