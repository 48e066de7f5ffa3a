package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"product-query-bot/internal/domain"
)

// FSSource reads a flat directory of .txt files, one document per file.
type FSSource struct {
	dir string
}

// NewFSSource creates a corpus source rooted at dir.
func NewFSSource(dir string) *FSSource {
	return &FSSource{dir: dir}
}

// Items returns every .txt file under the directory in name order.
func (s *FSSource) Items(ctx context.Context) ([]domain.CorpusItem, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", s.dir, err)
	}

	var items []domain.CorpusItem
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus item %s: %w", path, err)
		}

		items = append(items, domain.CorpusItem{
			Name:    entry.Name(),
			Source:  path,
			Content: strings.TrimSpace(string(content)),
		})
	}

	return items, nil
}

var _ domain.CorpusSource = (*FSSource)(nil)
