// Package orchestrator drives one chat turn end to end: intent
// classification, action dispatch or retrieval-grounded generation,
// conversation persistence, and fire-and-forget learning.
package orchestrator

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/telemetry"
)

const (
	// historyWindow bounds how many prior turns accompany the prompt.
	historyWindow = 4

	defaultRetrievalK = 3

	// apologyMessage is the user-visible reply when a turn fails internally.
	apologyMessage = "Désolé, je rencontre une difficulté technique. Veuillez réessayer."
)

// Classifier decides whether a message targets a structured action.
type Classifier interface {
	Classify(message string) domain.Classification
	Threshold() float64
}

// Retriever finds chunks similar to the query, owner-scoped.
type Retriever interface {
	Search(ctx context.Context, query string, k int, ownerID string) []domain.Chunk
}

// Responder generates an answer and degrades to a static reply when the
// model is unreachable.
type Responder interface {
	Respond(ctx context.Context, messages []domain.Message) string
}

// Executor dispatches a named action.
type Executor interface {
	Execute(ctx context.Context, name string, params map[string]any, ownerID string) *domain.ActionResult
}

// Enhancer assembles prior knowledge around a query.
type Enhancer interface {
	Enhance(ctx context.Context, query, ownerID, actionType string) (*domain.EnhancedContext, error)
}

// ConversationStore persists conversation turns.
type ConversationStore interface {
	Get(ctx context.Context, ownerID, conversationID string) (*domain.Conversation, error)
	Create(ctx context.Context, conversation *domain.Conversation) error
	AppendMessages(ctx context.Context, ownerID, conversationID string, messages []domain.Message) error
}

// LearningQueue accepts learning jobs for asynchronous processing.
type LearningQueue interface {
	Enqueue(ctx context.Context, job *domain.LearningJob) error
}

// Input is one inbound chat turn.
type Input struct {
	OwnerID        string
	ConversationID string
	Message        string
	// DisableActions skips intent classification and forces the
	// retrieval path.
	DisableActions bool
}

// Source describes a chunk that grounded a retrieval answer.
type Source struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	OwnerID string `json:"owner_id"`
}

// Reply is the orchestrator's answer for one turn.
type Reply struct {
	Message         string               `json:"message"`
	ConversationID  string               `json:"conversation_id"`
	ActionsExecuted bool                 `json:"actions_executed"`
	ActionResult    *domain.ActionResult `json:"action_results,omitempty"`
	HasContext      bool                 `json:"has_context"`
	ContextCount    int                  `json:"context_count,omitempty"`
	Sources         []Source             `json:"sources,omitempty"`
}

// Orchestrator wires the per-turn collaborators together.
type Orchestrator struct {
	classifier Classifier
	enhancer   Enhancer
	executor   Executor
	retriever  Retriever
	llm        Responder
	convos     ConversationStore
	jobs       LearningQueue
	retrievalK int
}

func New(
	classifier Classifier,
	enhancer Enhancer,
	executor Executor,
	retriever Retriever,
	llm Responder,
	convos ConversationStore,
	jobs LearningQueue,
	retrievalK int,
) *Orchestrator {
	if retrievalK <= 0 {
		retrievalK = defaultRetrievalK
	}
	return &Orchestrator{
		classifier: classifier,
		enhancer:   enhancer,
		executor:   executor,
		retriever:  retriever,
		llm:        llm,
		convos:     convos,
		jobs:       jobs,
		retrievalK: retrievalK,
	}
}

// HandleMessage runs one chat turn. Validation problems and a missing
// conversation surface as errors; every other failure is absorbed into an
// apology turn so callers never see raw internals.
func (o *Orchestrator) HandleMessage(ctx context.Context, input Input) (*Reply, error) {
	if input.OwnerID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "owner id is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, domain.ErrEmptyMessage
	}

	ctx, span := telemetry.StartSpan(ctx, "orchestrator.handle_message", telemetry.SpanAttributes{
		OwnerID:        input.OwnerID,
		ConversationID: input.ConversationID,
	})
	defer span.End()

	var history []domain.Message
	if input.ConversationID != "" {
		conversation, err := o.convos.Get(ctx, input.OwnerID, input.ConversationID)
		if err != nil {
			return nil, err
		}
		history = conversation.LastTurns(historyWindow)
	}

	if !input.DisableActions {
		classification := o.classifier.Classify(input.Message)
		if classification.IsActionable(o.classifier.Threshold()) {
			log.Printf("orchestrator: action %s detected (confidence: %.2f)", classification.Action, classification.Confidence)
			if reply, ok := o.actionPath(ctx, input, classification); ok {
				return reply, nil
			}
			// Failed actions fall through to retrieval.
		}
	}

	return o.retrievalPath(ctx, input, history), nil
}

// actionPath executes the classified action and formats its result. It
// reports ok=false when the result cannot be rendered as a useful answer,
// sending the turn down the retrieval path instead.
func (o *Orchestrator) actionPath(ctx context.Context, input Input, classification domain.Classification) (*Reply, bool) {
	enhanced, err := o.enhancer.Enhance(ctx, input.Message, input.OwnerID, classification.Action)
	if err != nil {
		log.Printf("orchestrator: knowledge enhancement failed: %v", err)
	} else if enhanced.EnhancementScore > 0 {
		log.Printf("orchestrator: enhancement score %.2f for action %s", enhanced.EnhancementScore, classification.Action)
	}

	result := o.executor.Execute(ctx, classification.Action, classification.Parameters, input.OwnerID)

	response, ok := BuildActionResponse(result)
	if !ok {
		return nil, false
	}

	conversationID, err := o.persist(ctx, input, response, true, result)
	if err != nil {
		return o.errorPath(ctx, input, err), true
	}

	o.enqueueLearning(ctx, input.OwnerID, input.Message, response, domain.InteractionType(classification.Action))

	return &Reply{
		Message:         response,
		ConversationID:  conversationID,
		ActionsExecuted: true,
		ActionResult:    result,
	}, true
}

// retrievalPath answers from owner-scoped context plus recent history.
func (o *Orchestrator) retrievalPath(ctx context.Context, input Input, history []domain.Message) *Reply {
	chunks := o.retriever.Search(ctx, input.Message, o.retrievalK, input.OwnerID)

	messages := make([]domain.Message, 0, len(history)+1)
	messages = append(messages, domain.Message{
		Role:      domain.RoleSystem,
		Content:   ContextPrompt(input.Message, chunks),
		Timestamp: time.Now().UTC(),
	})
	messages = append(messages, history...)

	response := o.llm.Respond(ctx, messages)

	conversationID, err := o.persist(ctx, input, response, false, nil)
	if err != nil {
		return o.errorPath(ctx, input, err)
	}

	o.enqueueLearning(ctx, input.OwnerID, input.Message, response, domain.InteractionRAGConversation)

	return &Reply{
		Message:         response,
		ConversationID:  conversationID,
		ActionsExecuted: false,
		HasContext:      len(chunks) > 0,
		ContextCount:    len(chunks),
		Sources:         sourcesFromChunks(chunks),
	}
}

// persist appends the user and assistant turns, creating the conversation on
// the first turn.
func (o *Orchestrator) persist(ctx context.Context, input Input, response string, agentic bool, result *domain.ActionResult) (string, error) {
	now := time.Now().UTC()
	meta := map[string]any{"is_agentic": agentic}
	if result != nil {
		meta["action_result"] = result
	}

	turns := []domain.Message{
		{Role: domain.RoleUser, Content: input.Message, Timestamp: now},
		{Role: domain.RoleAssistant, Content: response, Timestamp: now, Metadata: meta},
	}

	if input.ConversationID != "" {
		if err := o.convos.AppendMessages(ctx, input.OwnerID, input.ConversationID, turns); err != nil {
			return "", err
		}
		return input.ConversationID, nil
	}

	conversation := domain.NewConversation(uuid.NewString(), input.OwnerID, input.Message, now)
	conversation.IsAgentic = agentic
	conversation.Messages = turns
	if err := o.convos.Create(ctx, conversation); err != nil {
		return "", err
	}
	return conversation.ID, nil
}

// errorPath converts an internal failure into an apology turn. The apology
// is persisted best-effort; the caller always gets a reply.
func (o *Orchestrator) errorPath(ctx context.Context, input Input, cause error) *Reply {
	log.Printf("orchestrator: turn failed for owner %s: %v", input.OwnerID, cause)
	telemetry.CaptureError(ctx, cause)

	conversationID, err := o.persist(ctx, input, apologyMessage, false, nil)
	if err != nil {
		log.Printf("orchestrator: failed to persist apology turn: %v", err)
		conversationID = input.ConversationID
	}

	return &Reply{
		Message:         apologyMessage,
		ConversationID:  conversationID,
		ActionsExecuted: false,
	}
}

// enqueueLearning hands the turn to the learning queue. Failures are logged
// and never affect the reply.
func (o *Orchestrator) enqueueLearning(ctx context.Context, ownerID, question, response string, interactionType domain.InteractionType) {
	job := domain.NewLearningJob(uuid.NewString(), ownerID, question, response, interactionType, time.Now().UTC())
	if err := o.jobs.Enqueue(ctx, job); err != nil {
		log.Printf("orchestrator: failed to enqueue learning job: %v", err)
	}
}

func sourcesFromChunks(chunks []domain.Chunk) []Source {
	if len(chunks) == 0 {
		return nil
	}
	sources := make([]Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, Source{
			Content: truncateRunes(chunk.Content, 200),
			Source:  chunk.Metadata.Source,
			OwnerID: chunk.Metadata.OwnerID,
		})
	}
	return sources
}
