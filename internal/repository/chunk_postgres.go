package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexly/rag-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

// ChunkRepository maps vector index datapoint ids back to document text and
// metadata. This is the side lookup behind the retrieval endpoint.
type ChunkRepository interface {
	GetByDatapointIDs(ctx context.Context, datapointIDs []string) (map[string]*entity.DocumentChunk, error)
	Upsert(ctx context.Context, chunk *entity.DocumentChunk) error
}

var _ ChunkRepository = &ChunkPostgres{}

// ChunkPostgres implements ChunkRepository using PostgreSQL with an
// in-process TTL cache in front. Chunks are immutable once indexed, so a
// stale cache window only delays upserts becoming visible.
type ChunkPostgres struct {
	db    *pgxpool.Pool
	cache *gocache.Cache
}

func NewChunkPostgres(db *pgxpool.Pool, cacheTTL, cacheSweep time.Duration) *ChunkPostgres {
	return &ChunkPostgres{
		db:    db,
		cache: gocache.New(cacheTTL, cacheSweep),
	}
}

func (r *ChunkPostgres) GetByDatapointIDs(ctx context.Context, datapointIDs []string) (map[string]*entity.DocumentChunk, error) {
	result := make(map[string]*entity.DocumentChunk, len(datapointIDs))

	var missing []string
	for _, id := range datapointIDs {
		if cached, ok := r.cache.Get(id); ok {
			result[id] = cached.(*entity.DocumentChunk)
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	const query = `
		SELECT datapoint_id, content, metadata, created_at
		FROM document_chunks
		WHERE datapoint_id = ANY($1)`

	rows, err := r.db.Query(ctx, query, missing)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chunk entity.DocumentChunk
		if err := rows.Scan(&chunk.DatapointID, &chunk.Content, &chunk.Metadata, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		result[chunk.DatapointID] = &chunk
		r.cache.SetDefault(chunk.DatapointID, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	return result, nil
}

func (r *ChunkPostgres) Upsert(ctx context.Context, chunk *entity.DocumentChunk) error {
	const query = `
		INSERT INTO document_chunks (datapoint_id, content, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (datapoint_id)
		DO UPDATE SET content = EXCLUDED.content, metadata = EXCLUDED.metadata`

	if _, err := r.db.Exec(ctx, query, chunk.DatapointID, chunk.Content, chunk.Metadata); err != nil {
		return fmt.Errorf("upsert chunk: %w", err)
	}

	r.cache.Delete(chunk.DatapointID)
	return nil
}
