package usecase

import (
	"fmt"
	"strings"

	"product-query-bot/internal/domain"
)

// NoContextSentinel is fed into the generation prompt when retrieval produced
// nothing, so the model is told explicitly that it has no grounding.
const NoContextSentinel = "No relevant documents found."

// BuildContext renders retrieved documents as numbered blocks in retrieval
// order. The ranking signal survives implicitly through the ordering; no
// explicit rank is passed to generation.
func BuildContext(docs []domain.SearchResult) string {
	if len(docs) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = fmt.Sprintf("Document %d:\n%s\n", i+1, doc.Content)
	}
	return strings.Join(parts, "\n")
}
