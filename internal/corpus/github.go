package corpus

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/logger"
)

// GitHub loader defaults.
const (
	// githubTimeout bounds each API request.
	githubTimeout = 30 * time.Second

	// maxSourceBytes skips corpus files over 1MB.
	maxSourceBytes = 1024 * 1024
)

// GitHubConfig configures a repository corpus source.
type GitHubConfig struct {
	// Owner and Repo identify the repository.
	Owner string
	Repo  string

	// Ref is the branch or tag to read; empty uses the default branch.
	Ref string

	// Token authenticates API requests. Required for private
	// repositories, recommended for rate limits.
	Token string

	// Dir restricts loading to a subdirectory, empty for the whole tree.
	Dir string
}

// GitHubLoader pulls markdown corpus files from a repository tree.
// Blob fetches are rate limited well below GitHub's API quota.
type GitHubLoader struct {
	client  *gh.Client
	cfg     GitHubConfig
	limiter *rate.Limiter
}

// NewGitHubLoader creates a loader. With an empty token the client is
// unauthenticated (public repositories only).
func NewGitHubLoader(cfg GitHubConfig) (*GitHubLoader, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github corpus: owner and repo are required")
	}

	client := gh.NewClient(nil)
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		tc := oauth2.NewClient(context.Background(), ts)
		tc.Timeout = githubTimeout
		client = gh.NewClient(tc)
	}

	return &GitHubLoader{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(5.0), 10),
	}, nil
}

// Load fetches every markdown file under the configured tree as a
// corpus source, in tree order. Source IDs are repository paths with
// the extension stripped and slashes flattened.
func (l *GitHubLoader) Load(ctx context.Context) ([]domain.Source, error) {
	ref := l.cfg.Ref
	if ref == "" {
		repo, _, err := l.client.Repositories.Get(ctx, l.cfg.Owner, l.cfg.Repo)
		if err != nil {
			return nil, fmt.Errorf("get repository: %w", err)
		}
		ref = repo.GetDefaultBranch()
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tree, _, err := l.client.Git.GetTree(ctx, l.cfg.Owner, l.cfg.Repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("get tree %s: %w", ref, err)
	}

	var sources []domain.Source
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		p := entry.GetPath()
		if !strings.EqualFold(path.Ext(p), ".md") {
			continue
		}
		if l.cfg.Dir != "" && !strings.HasPrefix(p, strings.TrimSuffix(l.cfg.Dir, "/")+"/") {
			continue
		}
		if entry.GetSize() > maxSourceBytes {
			logger.Warn("Skipping oversized corpus file %s (%d bytes)", p, entry.GetSize())
			continue
		}

		text, err := l.fetchBlob(ctx, entry.GetSHA())
		if err != nil {
			return nil, fmt.Errorf("fetch blob %s: %w", p, err)
		}

		sources = append(sources, domain.Source{
			ID:   sourceID(p),
			Text: text,
		})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no markdown sources in %s/%s@%s", l.cfg.Owner, l.cfg.Repo, ref)
	}
	logger.Info("Loaded %d corpus sources from %s/%s@%s", len(sources), l.cfg.Owner, l.cfg.Repo, ref)
	return sources, nil
}

// fetchBlob retrieves and decodes a blob's content.
func (l *GitHubLoader) fetchBlob(ctx context.Context, sha string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	blob, _, err := l.client.Git.GetBlob(ctx, l.cfg.Owner, l.cfg.Repo, sha)
	if err != nil {
		return "", err
	}

	content := blob.GetContent()
	if blob.GetEncoding() == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode blob: %w", err)
		}
		return string(decoded), nil
	}
	return content, nil
}

// sourceID turns a repository path into a stable corpus identifier.
func sourceID(p string) string {
	id := strings.TrimSuffix(p, path.Ext(p))
	return strings.ReplaceAll(id, "/", "-")
}
