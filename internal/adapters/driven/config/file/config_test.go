package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_MissingFileYieldsDefaults(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Generation.Provider)
	assert.Equal(t, 0.50, cfg.Tips.MinimumUSD)
	assert.Equal(t, 0.05, cfg.Tips.Margin)
	assert.Equal(t, 18, cfg.Tips.AssetDecimals)
	assert.Equal(t, 5, cfg.Bot.RetrieveK)
	assert.Equal(t, 2, cfg.Bot.MaxAttempts)
}

func TestLoader_LoadsFileValues(t *testing.T) {
	dir := t.TempDir()
	content := `
[generation]
provider = "anthropic"
model = "claude-3-5-haiku-latest"

[corpus]
dir = "/srv/docs"
watch = true

[tips]
addresses = ["0xabc"]
minimum_usd = 1.25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Generation.Provider)
	assert.Equal(t, "/srv/docs", cfg.Corpus.Dir)
	assert.True(t, cfg.Corpus.Watch)
	assert.Equal(t, []string{"0xabc"}, cfg.Tips.Addresses)
	assert.Equal(t, 1.25, cfg.Tips.MinimumUSD)

	// Unset values still default
	assert.Equal(t, 0.05, cfg.Tips.Margin)
	assert.Equal(t, "ETH", cfg.Tips.AssetSymbol)
}

func TestLoader_EnvFallbackForKeys(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "sk-env")
	t.Setenv(EnvGitHubToken, "ghp-env")

	loader, err := NewLoader(t.TempDir())
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Embedding.APIKey)
	assert.Equal(t, "sk-env", cfg.Generation.APIKey)
	assert.Equal(t, "ghp-env", cfg.Corpus.GitHub.Token)
}

func TestLoader_FileKeyBeatsEnv(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "sk-env")

	dir := t.TempDir()
	content := `
[embedding]
api_key = "sk-file"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-file", cfg.Embedding.APIKey)
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	require.NoError(t, err)

	cfg := Default()
	cfg.Embedding.APIKey = "sk-saved"
	cfg.Tips.Addresses = []string{"0xdef"}
	require.NoError(t, loader.Save(cfg))

	reloaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-saved", reloaded.Embedding.APIKey)
	assert.Equal(t, []string{"0xdef"}, reloaded.Tips.Addresses)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Embedding.APIKey = "k"
	valid.Generation.APIKey = "k"
	assert.NoError(t, Validate(valid))

	missingKey := valid
	missingKey.Embedding.APIKey = ""
	assert.Error(t, Validate(missingKey))

	badProvider := valid
	badProvider.Generation.Provider = "mystery"
	assert.Error(t, Validate(badProvider))

	badMargin := valid
	badMargin.Tips.Margin = 1.5
	assert.Error(t, Validate(badMargin))

	badK := valid
	badK.Bot.RetrieveK = -1
	assert.Error(t, Validate(badK))
}
