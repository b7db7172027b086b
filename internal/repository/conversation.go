package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/pagination"
)

type ConversationPageResult struct {
	Items      []*domain.Conversation
	NextCursor string
	HasMore    bool
}

// ConversationRepository stores conversations with their message history as
// a JSONB column, appended to in place.
type ConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO conversations (id, owner_id, title, messages, is_agentic, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.OwnerID, c.Title, messages, c.IsAgentic, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *ConversationRepository) Get(ctx context.Context, ownerID, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	var messages []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, messages, is_agentic, created_at, updated_at
		 FROM conversations WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Title, &messages, &c.IsAgentic, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(messages, &c.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages for conversation %s: %w", c.ID, err)
	}
	return &c, nil
}

// AppendMessages appends turns to the JSONB message array and bumps
// updated_at in one statement.
func (r *ConversationRepository) AppendMessages(ctx context.Context, ownerID, id string, turns []domain.Message) error {
	encoded, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE conversations
		 SET messages = messages || $1::jsonb, updated_at = $2
		 WHERE id = $3 AND owner_id = $4`,
		encoded, time.Now().UTC(), id, ownerID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

// ListByOwner pages through an owner's conversations, newest first. Message
// bodies are included; callers listing summaries can project a lighter view.
func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID string, cursor *pagination.Cursor, limit int) (*ConversationPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, owner_id, title, messages, is_agentic, created_at, updated_at
			 FROM conversations
			 WHERE owner_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			ownerID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, owner_id, title, messages, is_agentic, created_at, updated_at
			 FROM conversations
			 WHERE owner_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			ownerID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var messages []byte
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &messages, &c.IsAgentic, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(messages, &c.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages for conversation %s: %w", c.ID, err)
		}
		conversations = append(conversations, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(conversations) > limit
	if hasMore {
		conversations = conversations[:limit]
	}

	var nextCursor string
	if hasMore && len(conversations) > 0 {
		last := conversations[len(conversations)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &ConversationPageResult{
		Items:      conversations,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *ConversationRepository) Delete(ctx context.Context, ownerID, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM conversations WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}
