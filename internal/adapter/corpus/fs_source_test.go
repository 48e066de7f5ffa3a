package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"product-query-bot/internal/adapter/corpus"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFSSource_Items(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shampoo_anticaspa.txt", "Anti-Dandruff Shampoo\nPrice: $15.99\n")
	writeFile(t, dir, "crema_facial.txt", "Facial Cream\nPrice: $22.50")
	writeFile(t, dir, "notes.md", "not part of the corpus")

	src := corpus.NewFSSource(dir)
	items, err := src.Items(context.Background())
	assert.NoError(t, err)
	assert.Len(t, items, 2, "only .txt files should be read")

	// os.ReadDir returns entries sorted by name.
	assert.Equal(t, "crema_facial.txt", items[0].Name)
	assert.Equal(t, "shampoo_anticaspa.txt", items[1].Name)
	assert.Equal(t, "Anti-Dandruff Shampoo\nPrice: $15.99", items[1].Content, "content should be trimmed")
	assert.Equal(t, filepath.Join(dir, "shampoo_anticaspa.txt"), items[1].Source)
}

func TestFSSource_EmptyDirectory(t *testing.T) {
	src := corpus.NewFSSource(t.TempDir())
	items, err := src.Items(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestFSSource_MissingDirectory(t *testing.T) {
	src := corpus.NewFSSource(filepath.Join(t.TempDir(), "missing"))
	_, err := src.Items(context.Background())
	assert.ErrorContains(t, err, "failed to read corpus directory")
}
