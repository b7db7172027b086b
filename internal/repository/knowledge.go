package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/orbia-ai/orbia/internal/domain"
)

// KnowledgeRepository stores learned knowledge entries. Embeddings live in a
// pgvector column so the in-memory index can be rebuilt without re-embedding.
type KnowledgeRepository struct {
	pool *pgxpool.Pool
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{pool: pool}
}

func (r *KnowledgeRepository) Create(ctx context.Context, e *domain.KnowledgeEntry) error {
	var embedding any
	if len(e.Embedding) > 0 {
		embedding = pgvector.NewVector(e.Embedding)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO knowledge_entries
		 (id, owner_id, question, response, interaction_type, value_score, embedding, created_at, last_used, usage_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.OwnerID, e.Question, e.Response, e.InteractionType, e.ValueScore,
		embedding, e.CreatedAt, e.LastUsed, e.UsageCount,
	)
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, question, response, interaction_type, value_score, created_at, last_used, usage_count
		 FROM knowledge_entries WHERE id = $1`,
		id,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *KnowledgeRepository) ListByOwner(ctx context.Context, ownerID string, minScore float64) ([]*domain.KnowledgeEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, question, response, interaction_type, value_score, created_at, last_used, usage_count
		 FROM knowledge_entries
		 WHERE owner_id = $1 AND value_score >= $2
		 ORDER BY value_score DESC, created_at DESC`,
		ownerID, minScore,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *KnowledgeRepository) ListHighValue(ctx context.Context, minScore float64, limit int) ([]*domain.KnowledgeEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, question, response, interaction_type, value_score, created_at, last_used, usage_count
		 FROM knowledge_entries
		 WHERE value_score >= $1
		 ORDER BY value_score DESC, created_at DESC
		 LIMIT $2`,
		minScore, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *KnowledgeRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]*domain.KnowledgeEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, question, response, interaction_type, value_score, created_at, last_used, usage_count
		 FROM knowledge_entries
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListWithEmbeddings streams every entry that carries a stored embedding,
// oldest first so rebuild ordinals are stable.
func (r *KnowledgeRepository) ListWithEmbeddings(ctx context.Context) ([]*domain.KnowledgeEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, question, response, interaction_type, value_score, embedding, created_at, last_used, usage_count
		 FROM knowledge_entries
		 WHERE embedding IS NOT NULL
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.KnowledgeEntry
	for rows.Next() {
		var e domain.KnowledgeEntry
		var embedding pgvector.Vector
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Question, &e.Response, &e.InteractionType,
			&e.ValueScore, &embedding, &e.CreatedAt, &e.LastUsed, &e.UsageCount); err != nil {
			return nil, err
		}
		e.Embedding = embedding.Slice()
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// TouchUsage bumps usage tracking on surfaced entries.
func (r *KnowledgeRepository) TouchUsage(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE knowledge_entries
		 SET last_used = now(), usage_count = usage_count + 1
		 WHERE id = ANY($1)`,
		ids,
	)
	return err
}

func (r *KnowledgeRepository) StatsByOwner(ctx context.Context, ownerID string) (total, highValue int, avgScore float64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE value_score >= $2),
		        COALESCE(AVG(value_score), 0)
		 FROM knowledge_entries WHERE owner_id = $1`,
		ownerID, domain.HighValueScore,
	).Scan(&total, &highValue, &avgScore)
	return total, highValue, avgScore, err
}

func scanEntry(row pgx.Row) (*domain.KnowledgeEntry, error) {
	var e domain.KnowledgeEntry
	err := row.Scan(&e.ID, &e.OwnerID, &e.Question, &e.Response, &e.InteractionType,
		&e.ValueScore, &e.CreatedAt, &e.LastUsed, &e.UsageCount)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.KnowledgeEntry, error) {
	var entries []*domain.KnowledgeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
