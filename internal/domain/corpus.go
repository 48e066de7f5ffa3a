package domain

import (
	"context"
	"errors"
)

// ErrEmptyCorpus signals that the corpus source yielded zero items. The index
// cannot be built without a corpus, so this is fatal at startup.
var ErrEmptyCorpus = errors.New("corpus source yielded no documents")

// CorpusItem is one readable item from the corpus source. Name is the item's
// handle (usually a filename); Source identifies where it was read from.
type CorpusItem struct {
	Name    string
	Source  string
	Content string
}

// CorpusSource yields the full set of documents available for indexing, one
// logical document per item.
type CorpusSource interface {
	Items(ctx context.Context) ([]CorpusItem, error)
}
