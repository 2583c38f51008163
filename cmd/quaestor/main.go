// Command quaestor is the tip-gated question answering bot.
package main

import (
	"context"
	"fmt"
	"os"

	cachefile "github.com/custodia-labs/quaestor/internal/adapters/driven/cache/file"
	configfile "github.com/custodia-labs/quaestor/internal/adapters/driven/config/file"
	openaiembed "github.com/custodia-labs/quaestor/internal/adapters/driven/embedding/openai"
	anthropicgen "github.com/custodia-labs/quaestor/internal/adapters/driven/generation/anthropic"
	openaigen "github.com/custodia-labs/quaestor/internal/adapters/driven/generation/openai"
	"github.com/custodia-labs/quaestor/internal/adapters/driven/pricefeed/coingecko"
	"github.com/custodia-labs/quaestor/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/quaestor/internal/adapters/driving/cli"
	"github.com/custodia-labs/quaestor/internal/chunker"
	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/services"
	"github.com/custodia-labs/quaestor/internal/corpus"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// version is overridden at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configLoader, err := configfile.NewLoader("")
	if err != nil {
		return fmt.Errorf("config loader: %w", err)
	}
	cfg, err := configLoader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cli.SetVersion(version)
	cli.SetConfig(cfg, configLoader)

	// Providers are wired lazily enough that config-only commands
	// (version, config show, set-key) work without API keys.
	if cfg.Embedding.APIKey != "" {
		if err := wireServices(cfg); err != nil {
			return err
		}
	}

	return cli.Execute()
}

// wireServices builds the driven adapters and core services and hands
// them to the CLI.
func wireServices(cfg configfile.Config) error {
	embedder, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		BaseURL: cfg.Embedding.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}

	answerer, err := newAnswerService(cfg)
	if err != nil {
		return fmt.Errorf("generation service: %w", err)
	}

	cache, err := cachefile.NewStore("")
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	threadLog, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("thread log: %w", err)
	}

	knowledge := services.NewKnowledgeIndex(chunker.New(), embedder, cache)
	cli.SetKnowledgeService(knowledge)

	feed := coingecko.NewPriceFeed(coingecko.Config{AssetID: cfg.Tips.PriceAssetID})
	oracle := services.NewPriceOracle(feed)
	pending := services.NewPendingStore()

	cli.SetBotFactory(func(m driven.Messenger) *services.Orchestrator {
		return services.NewOrchestrator(pending, oracle, knowledge, answerer, m, threadLog, services.OrchestratorConfig{
			TipAddresses:  cfg.Tips.Addresses,
			MinimumUSD:    cfg.Tips.MinimumUSD,
			Margin:        cfg.Tips.Margin,
			AssetDecimals: cfg.Tips.AssetDecimals,
			AssetSymbol:   cfg.Tips.AssetSymbol,
			MaxAttempts:   cfg.Bot.MaxAttempts,
			RetrieveK:     cfg.Bot.RetrieveK,
			SystemContext: cfg.Bot.SystemContext,
		})
	})

	cli.SetSourceLoader(newSourceLoader(cfg))
	return nil
}

// newAnswerService selects the generation provider from config.
func newAnswerService(cfg configfile.Config) (driven.AnswerService, error) {
	switch cfg.Generation.Provider {
	case "anthropic":
		return anthropicgen.NewAnswerService(anthropicgen.Config{
			APIKey:  cfg.Generation.APIKey,
			Model:   cfg.Generation.Model,
			BaseURL: cfg.Generation.BaseURL,
		})
	default:
		return openaigen.NewAnswerService(openaigen.Config{
			APIKey:  cfg.Generation.APIKey,
			Model:   cfg.Generation.Model,
			BaseURL: cfg.Generation.BaseURL,
		})
	}
}

// newSourceLoader selects the corpus source from config. A configured
// GitHub repository wins over a local directory.
func newSourceLoader(cfg configfile.Config) func(ctx context.Context) ([]domain.Source, error) {
	if cfg.Corpus.GitHub.Repo != "" {
		return func(ctx context.Context) ([]domain.Source, error) {
			loader, err := corpus.NewGitHubLoader(corpus.GitHubConfig{
				Owner: cfg.Corpus.GitHub.Owner,
				Repo:  cfg.Corpus.GitHub.Repo,
				Ref:   cfg.Corpus.GitHub.Ref,
				Dir:   cfg.Corpus.GitHub.Dir,
				Token: cfg.Corpus.GitHub.Token,
			})
			if err != nil {
				return nil, err
			}
			return loader.Load(ctx)
		}
	}

	dir := cfg.Corpus.Dir
	if dir == "" {
		dir = "."
		logger.Debug("No corpus configured, using current directory")
	}
	return func(_ context.Context) ([]domain.Source, error) {
		return corpus.LoadDir(dir)
	}
}
