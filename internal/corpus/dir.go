package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// LoadDir reads every markdown file in dir (non-recursive) as a corpus
// source. Source IDs are file names without the extension; sources are
// returned in lexical order so the corpus fingerprint is stable.
func LoadDir(dir string) ([]domain.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	sources := make([]domain.Source, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read corpus file %s: %w", name, err)
		}
		sources = append(sources, domain.Source{
			ID:   strings.TrimSuffix(name, filepath.Ext(name)),
			Text: string(data),
		})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no markdown sources in %s", dir)
	}
	return sources, nil
}
