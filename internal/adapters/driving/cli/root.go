// Package cli wires the cobra command tree. Services are injected by
// the composition root through the Set functions before Execute runs.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/quaestor/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
	"github.com/custodia-labs/quaestor/internal/core/services"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected dependencies.
var (
	cfg              configfile.Config
	configLoader     *configfile.Loader
	knowledgeService driving.KnowledgeService

	// newBot builds an orchestrator bound to a transport messenger.
	// Each surface (console, TUI) supplies its own.
	newBot func(driven.Messenger) *services.Orchestrator

	// loadSources reads the configured corpus.
	loadSources func(ctx context.Context) ([]domain.Source, error)
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quaestor",
	Short: "Tip-gated question answering over a markdown knowledge corpus",
	Long: `Quaestor answers questions strictly from an indexed markdown corpus.
Public transports gate answers behind a small on-chain tip; local
surfaces (ask, mcp) query the index directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetConfig injects the loaded configuration and its loader.
func SetConfig(c configfile.Config, loader *configfile.Loader) {
	cfg = c
	configLoader = loader
}

// SetKnowledgeService injects the knowledge index.
func SetKnowledgeService(s driving.KnowledgeService) {
	knowledgeService = s
}

// SetBotFactory injects the orchestrator factory.
func SetBotFactory(f func(driven.Messenger) *services.Orchestrator) {
	newBot = f
}

// SetSourceLoader injects the corpus loader.
func SetSourceLoader(f func(ctx context.Context) ([]domain.Source, error)) {
	loadSources = f
}

// buildIndex loads the corpus and builds (or restores) the index.
func buildIndex(ctx context.Context) error {
	sources, err := loadSources(ctx)
	if err != nil {
		return err
	}
	return knowledgeService.Build(ctx, sources)
}
