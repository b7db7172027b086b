package domain

import (
	"fmt"
	"time"
)

// InteractionType identifies the kind of interaction a knowledge entry was
// learned from.
type InteractionType string

const (
	InteractionWebSearch       InteractionType = "web_search"
	InteractionDataAnalysis    InteractionType = "data_analysis"
	InteractionRAGConversation InteractionType = "rag_conversation"
	InteractionCodeGeneration  InteractionType = "code_generation"
	InteractionDocProcessing   InteractionType = "document_processing"
	InteractionKnowledgeUpdate InteractionType = "knowledge_update"
)

// MinStoredValueScore is the hard admission gate: entries scoring below it are
// never stored by the learning path.
const MinStoredValueScore = 0.3

// HighValueScore marks entries eligible for cross-owner (community) sharing.
const HighValueScore = 0.7

// KnowledgeEntry is a reusable question/response pair learned from a valuable
// interaction. Entries are created by the learning path and mutated only by
// usage tracking; they are never deleted automatically.
type KnowledgeEntry struct {
	ID              string
	OwnerID         string
	Question        string
	Response        string
	InteractionType InteractionType
	ValueScore      float64
	Embedding       []float32
	CreatedAt       time.Time
	LastUsed        *time.Time
	UsageCount      int
}

// NewKnowledgeEntry creates a new KnowledgeEntry instance.
func NewKnowledgeEntry(
	id, ownerID, question, response string,
	interactionType InteractionType,
	valueScore float64,
	createdAt time.Time,
) *KnowledgeEntry {
	return &KnowledgeEntry{
		ID:              id,
		OwnerID:         ownerID,
		Question:        question,
		Response:        response,
		InteractionType: interactionType,
		ValueScore:      valueScore,
		CreatedAt:       createdAt,
		LastUsed:        nil,
		UsageCount:      0,
	}
}

// CommunitySource marks an anonymized entry as shared community knowledge.
const CommunitySource = "community_knowledge"

// Anonymized returns a copy of the entry with the owner identity replaced by
// the community marker, suitable for cross-owner sharing.
func (e *KnowledgeEntry) Anonymized() *KnowledgeEntry {
	clone := *e
	clone.OwnerID = CommunitySource
	return &clone
}

// ValidateKnowledgeEntry validates a KnowledgeEntry instance.
func ValidateKnowledgeEntry(e *KnowledgeEntry) error {
	if e == nil {
		return fmt.Errorf("knowledge entry cannot be nil")
	}

	if e.ID == "" {
		return fmt.Errorf("knowledge entry ID is required")
	}

	if e.OwnerID == "" {
		return fmt.Errorf("knowledge entry OwnerID is required")
	}

	if e.Question == "" {
		return fmt.Errorf("knowledge entry Question is required")
	}

	if e.Response == "" {
		return fmt.Errorf("knowledge entry Response is required")
	}

	if !IsValidInteractionType(e.InteractionType) {
		return fmt.Errorf("knowledge entry InteractionType is invalid: %s", e.InteractionType)
	}

	if e.ValueScore < 0 || e.ValueScore > 1 {
		return fmt.Errorf("knowledge entry ValueScore must be in [0,1]: %f", e.ValueScore)
	}

	return nil
}

// IsValidInteractionType checks if an InteractionType is valid.
func IsValidInteractionType(t InteractionType) bool {
	switch t {
	case InteractionWebSearch, InteractionDataAnalysis, InteractionRAGConversation,
		InteractionCodeGeneration, InteractionDocProcessing, InteractionKnowledgeUpdate:
		return true
	}
	return false
}

// LearnableInteractionTypes lists the interaction types eligible for the
// automatic learning path. knowledge_update bypasses learning entirely (it is
// an explicit user request), so it is not part of this list.
func LearnableInteractionTypes() []InteractionType {
	return []InteractionType{
		InteractionWebSearch,
		InteractionDataAnalysis,
		InteractionRAGConversation,
		InteractionCodeGeneration,
		InteractionDocProcessing,
	}
}

// EnhancedContext aggregates prior knowledge assembled before answering.
type EnhancedContext struct {
	OwnerKnowledge   []*KnowledgeEntry
	GlobalKnowledge  []*KnowledgeEntry
	ActionKnowledge  *ActionKnowledge
	EnhancementScore float64
}

// HasKnowledge reports whether any knowledge was found.
func (c *EnhancedContext) HasKnowledge() bool {
	return len(c.OwnerKnowledge) > 0 || len(c.GlobalKnowledge) > 0 || c.ActionKnowledge != nil
}

// TotalItems returns the number of knowledge items in the context.
func (c *EnhancedContext) TotalItems() int {
	n := len(c.OwnerKnowledge) + len(c.GlobalKnowledge)
	if c.ActionKnowledge != nil {
		n++
	}
	return n
}

// ActionKnowledge is a static best-practices blurb keyed by action type.
type ActionKnowledge struct {
	Action        string
	Description   string
	BestPractices []string
}

// KnowledgeStats summarizes one owner's knowledge base.
type KnowledgeStats struct {
	OwnerID       string
	Total         int
	HighValue     int
	GraphKeywords int
	AvgScore      float64
}
