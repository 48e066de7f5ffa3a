package chromem

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"product-query-bot/internal/domain"
)

const collectionDescription = "Product documents for retrieval"

// Store implements domain.VectorStore on top of an embedded chromem-go
// database. Document and query embedding both go through the configured
// VectorEncoder.
type Store struct {
	db      *chromemgo.DB
	name    string
	encoder domain.VectorEncoder

	mu         sync.RWMutex
	collection *chromemgo.Collection
}

// NewDB creates an in-memory database, or a persistent one when persistDir is
// non-empty.
func NewDB(persistDir string) (*chromemgo.DB, error) {
	if persistDir == "" {
		return chromemgo.NewDB(), nil
	}
	db, err := chromemgo.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open persistent vector db: %w", err)
	}
	return db, nil
}

// New creates a store backed by the named collection, creating it if needed.
func New(db *chromemgo.DB, name string, encoder domain.VectorEncoder) (*Store, error) {
	collection, err := db.GetOrCreateCollection(name, collectionMetadata(), embeddingFunc(encoder))
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return &Store{
		db:         db,
		name:       name,
		encoder:    encoder,
		collection: collection,
	}, nil
}

func collectionMetadata() map[string]string {
	return map[string]string{"description": collectionDescription}
}

// embeddingFunc adapts a VectorEncoder to chromem's per-text callback.
func embeddingFunc(encoder domain.VectorEncoder) chromemgo.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := encoder.Encode(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
		}
		return vecs[0], nil
	}
}

func (s *Store) Add(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	cdocs := make([]chromemgo.Document, len(docs))
	for i, doc := range docs {
		cdocs[i] = chromemgo.Document{
			ID:      doc.ID,
			Content: doc.Content,
			Metadata: map[string]string{
				"filename": doc.Metadata.Filename,
				"source":   doc.Metadata.Source,
				"doc_id":   doc.Metadata.DocID,
			},
		}
	}

	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()

	if err := collection.AddDocuments(ctx, cdocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()

	count := collection.Count()
	if count == 0 {
		return []domain.SearchResult{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	out := make([]domain.SearchResult, len(results))
	for i, res := range results {
		// chromem reports cosine similarity in [-1, 1]; convert to a
		// distance where lower means more relevant.
		distance := 1 - res.Similarity
		if distance < 0 {
			distance = 0
		}
		out[i] = domain.SearchResult{
			ID:       res.ID,
			Content:  res.Content,
			Distance: distance,
			Metadata: domain.DocumentMetadata{
				Filename: res.Metadata["filename"],
				Source:   res.Metadata["source"],
				DocID:    res.Metadata["doc_id"],
			},
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count(), nil
}

// Reset drops and recreates the collection so a rebuild starts empty.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", s.name, err)
	}
	collection, err := s.db.GetOrCreateCollection(s.name, collectionMetadata(), embeddingFunc(s.encoder))
	if err != nil {
		return fmt.Errorf("failed to recreate collection %s: %w", s.name, err)
	}
	s.collection = collection
	return nil
}

var _ domain.VectorStore = (*Store)(nil)
