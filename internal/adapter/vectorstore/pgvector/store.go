package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"product-query-bot/internal/domain"
)

const (
	embedBatchSize  = 32
	embedConcurrent = 4
)

// Store implements domain.VectorStore on PostgreSQL with the pgvector
// extension. The table is created lazily on first Add because the embedding
// dimensionality is only known once the encoder has produced a vector.
type Store struct {
	pool    *pgxpool.Pool
	encoder domain.VectorEncoder
	table   string
}

// New creates a store writing to the given table.
func New(pool *pgxpool.Pool, encoder domain.VectorEncoder, table string) *Store {
	if table == "" {
		table = "product_documents"
	}
	return &Store{pool: pool, encoder: encoder, table: table}
}

func (s *Store) Add(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors, err := s.embedAll(ctx, docs)
	if err != nil {
		return err
	}

	if err := s.ensureSchema(ctx, len(vectors[0])); err != nil {
		return err
	}

	rows := make([][]interface{}, len(docs))
	for i, doc := range docs {
		rows[i] = []interface{}{
			doc.ID,
			doc.Content,
			doc.Metadata.Filename,
			doc.Metadata.Source,
			doc.Metadata.DocID,
			pgvec.NewVector(vectors[i]),
		}
	}

	_, err = s.pool.CopyFrom(
		ctx,
		pgx.Identifier{s.table},
		[]string{"id", "content", "filename", "source", "doc_id", "embedding"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert documents: %w", err)
	}

	return nil
}

// embedAll encodes document contents in bounded concurrent batches.
func (s *Store) embedAll(ctx context.Context, docs []domain.Document) ([][]float32, error) {
	vectors := make([][]float32, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrent)

	for start := 0; start < len(docs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = docs[i].Content
			}
			batch, err := s.encoder.Encode(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to encode documents [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("expected %d embeddings, got %d", end-start, len(batch))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (s *Store) ensureSchema(ctx context.Context, dim int) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to ensure pgvector extension: %w", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id        text PRIMARY KEY,
			content   text NOT NULL,
			filename  text NOT NULL DEFAULT '',
			source    text NOT NULL DEFAULT '',
			doc_id    text NOT NULL DEFAULT '',
			embedding vector(%d) NOT NULL
		)
	`, pgx.Identifier{s.table}.Sanitize(), dim)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	return nil
}

func (s *Store) Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []domain.SearchResult{}, nil
	}

	embeddings, err := s.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(embeddings))
	}

	sql := fmt.Sprintf(`
		SELECT id, content, filename, source, doc_id, embedding <=> $1 AS distance
		FROM %s
		ORDER BY distance ASC
		LIMIT $2
	`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, sql, pgvec.NewVector(embeddings[0]), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var distance float64
		if err := rows.Scan(&r.ID, &r.Content, &r.Metadata.Filename, &r.Metadata.Source, &r.Metadata.DocID, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Distance = float32(distance)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var reg *string
	if err := s.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", s.table).Scan(&reg); err != nil {
		return 0, fmt.Errorf("failed to check table existence: %w", err)
	}
	if reg == nil {
		return 0, nil
	}

	var count int
	sql := fmt.Sprintf("SELECT count(*) FROM %s", pgx.Identifier{s.table}.Sanitize())
	if err := s.pool.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Reset drops the table; Add recreates it with the current embedding
// dimensionality.
func (s *Store) Reset(ctx context.Context) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{s.table}.Sanitize())
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", s.table, err)
	}
	return nil
}

var _ domain.VectorStore = (*Store)(nil)
