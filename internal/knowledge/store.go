// Package knowledge implements value-scored learning from interactions and
// knowledge-enhanced context assembly.
package knowledge

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/orbia-ai/orbia/internal/domain"
)

const (
	ownerResultLimit  = 5
	globalResultLimit = 5
	globalScanLimit   = 20
)

// Repository persists knowledge entries.
type Repository interface {
	Create(ctx context.Context, entry *domain.KnowledgeEntry) error
	ListByOwner(ctx context.Context, ownerID string, minScore float64) ([]*domain.KnowledgeEntry, error)
	ListHighValue(ctx context.Context, minScore float64, limit int) ([]*domain.KnowledgeEntry, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]*domain.KnowledgeEntry, error)
	TouchUsage(ctx context.Context, ids []string) error
	StatsByOwner(ctx context.Context, ownerID string) (total, highValue int, avgScore float64, err error)
}

// Indexer receives learned knowledge for similarity retrieval.
type Indexer interface {
	Add(ctx context.Context, chunks []domain.Chunk) (int, error)
}

// Embedder computes the entry embedding stored alongside the row.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Store is the knowledge store: it learns from valuable interactions and
// assembles enhanced context for new queries.
type Store struct {
	repo          Repository
	index         Indexer
	embedder      Embedder
	graph         *Graph
	minValueScore float64
}

func NewStore(repo Repository, index Indexer, embedder Embedder, minValueScore float64) *Store {
	if minValueScore <= 0 {
		minValueScore = domain.MinStoredValueScore
	}
	return &Store{
		repo:          repo,
		index:         index,
		embedder:      embedder,
		graph:         NewGraph(),
		minValueScore: minValueScore,
	}
}

// Learn evaluates one interaction and stores it when it carries reusable
// value. A nil entry with nil error means the interaction was skipped
// (non-learnable type or score below the gate).
func (s *Store) Learn(ctx context.Context, ownerID, question, response string, interactionType domain.InteractionType) (*domain.KnowledgeEntry, error) {
	learnable := false
	for _, t := range domain.LearnableInteractionTypes() {
		if t == interactionType {
			learnable = true
			break
		}
	}
	if !learnable {
		return nil, nil
	}

	score := ValueScore(response)
	if score < s.minValueScore {
		return nil, nil
	}

	entry := domain.NewKnowledgeEntry(
		uuid.NewString(),
		ownerID,
		question,
		response,
		interactionType,
		score,
		time.Now().UTC(),
	)

	document := question + "\n\n" + response
	embedding, err := s.embedder.GenerateEmbedding(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("failed to embed knowledge entry: %w", err)
	}
	entry.Embedding = embedding

	if err := domain.ValidateKnowledgeEntry(entry); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to store knowledge entry: %w", err)
	}

	// Indexing is best-effort; the entry row is already durable.
	if _, err := s.index.Add(ctx, []domain.Chunk{
		domain.NewChunk(document, domain.ChunkMetadata{
			Source:   string(interactionType),
			OwnerID:  ownerID,
			AddedVia: "learning",
		}),
	}); err != nil {
		log.Printf("knowledge: failed to index entry %s: %v", entry.ID, err)
	}

	s.graph.Record(ownerID, entry)

	log.Printf("knowledge: learned entry %s (score: %.2f)", entry.ID, score)
	return entry, nil
}

// Enhance assembles prior knowledge around a query: the owner's relevant
// entries, high-value community entries from all owners (anonymized), and
// static action guidance. Partial failures degrade to missing sections.
func (s *Store) Enhance(ctx context.Context, query, ownerID, actionType string) (*domain.EnhancedContext, error) {
	queryKeywords := ExtractKeywords(query)

	owner := s.ownerKnowledge(ctx, ownerID, queryKeywords)
	global := s.globalKnowledge(ctx, queryKeywords)

	enhanced := &domain.EnhancedContext{
		OwnerKnowledge:   owner,
		GlobalKnowledge:  global,
		EnhancementScore: EnhancementScore(append(append([]*domain.KnowledgeEntry{}, owner...), global...)),
	}
	if actionType != "" {
		enhanced.ActionKnowledge = ActionBestPractices(actionType)
	}

	s.touchUsage(ctx, owner, global)

	return enhanced, nil
}

func (s *Store) ownerKnowledge(ctx context.Context, ownerID string, queryKeywords []string) []*domain.KnowledgeEntry {
	entries, err := s.repo.ListByOwner(ctx, ownerID, s.minValueScore)
	if err != nil {
		log.Printf("knowledge: owner lookup failed: %v", err)
		return nil
	}

	var results []*domain.KnowledgeEntry
	for _, entry := range entries {
		if Relevant(entry, queryKeywords, s.minValueScore) {
			results = append(results, entry)
			if len(results) == ownerResultLimit {
				break
			}
		}
	}
	return results
}

func (s *Store) globalKnowledge(ctx context.Context, queryKeywords []string) []*domain.KnowledgeEntry {
	entries, err := s.repo.ListHighValue(ctx, domain.HighValueScore, globalScanLimit)
	if err != nil {
		log.Printf("knowledge: global lookup failed: %v", err)
		return nil
	}

	var results []*domain.KnowledgeEntry
	for _, entry := range entries {
		if Relevant(entry, queryKeywords, s.minValueScore) {
			results = append(results, entry.Anonymized())
			if len(results) == globalResultLimit {
				break
			}
		}
	}
	return results
}

// touchUsage bumps usage tracking for surfaced entries, best-effort.
func (s *Store) touchUsage(ctx context.Context, groups ...[]*domain.KnowledgeEntry) {
	var ids []string
	for _, group := range groups {
		for _, entry := range group {
			if entry.ID != "" {
				ids = append(ids, entry.ID)
			}
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := s.repo.TouchUsage(ctx, ids); err != nil {
		log.Printf("knowledge: usage tracking failed: %v", err)
	}
}

// UserStats summarizes one owner's knowledge base.
func (s *Store) UserStats(ctx context.Context, ownerID string) (*domain.KnowledgeStats, error) {
	total, highValue, avgScore, err := s.repo.StatsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute knowledge stats: %w", err)
	}

	return &domain.KnowledgeStats{
		OwnerID:       ownerID,
		Total:         total,
		HighValue:     highValue,
		GraphKeywords: s.graph.Size(ownerID),
		AvgScore:      avgScore,
	}, nil
}

// Recent lists an owner's latest entries.
func (s *Store) Recent(ctx context.Context, ownerID string, limit int) ([]*domain.KnowledgeEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListRecent(ctx, ownerID, limit)
}
