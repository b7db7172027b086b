// Package actions implements the agentic action registry: a fixed catalog of
// named operations executed on behalf of a user, each returning a uniform
// result envelope regardless of outcome.
package actions

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/websearch"
)

// Generator produces a completion for a prompt expressed as chat messages.
type Generator interface {
	Generate(ctx context.Context, messages []domain.Message) (string, error)
}

// Searcher runs a query through the web search provider chain.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) *websearch.Outcome
}

// Indexer receives chunks produced by actions for similarity retrieval.
type Indexer interface {
	Add(ctx context.Context, chunks []domain.Chunk) (int, error)
}

// Conversations loads a conversation scoped to its owner.
type Conversations interface {
	Get(ctx context.Context, ownerID, conversationID string) (*domain.Conversation, error)
}

// handler executes one action and returns its raw result payload.
type handler func(ctx context.Context, params map[string]any, ownerID string) (map[string]any, error)

// Registry holds the action catalog and dispatches executions. Handlers and
// descriptors are fixed at construction.
type Registry struct {
	llm      Generator
	search   Searcher
	index    Indexer
	convos   Conversations
	handlers map[string]handler
	catalog  []domain.ActionDescriptor
}

// NewRegistry builds the registry with its six built-in actions. It fails if
// the descriptor catalog and the handler set disagree, which would mean a
// wiring mistake at startup.
func NewRegistry(llm Generator, search Searcher, index Indexer, convos Conversations) (*Registry, error) {
	r := &Registry{
		llm:     llm,
		search:  search,
		index:   index,
		convos:  convos,
		catalog: builtinDescriptors(),
	}
	r.handlers = map[string]handler{
		domain.ActionWebSearch:       r.webSearch,
		domain.ActionDataAnalysis:    r.analyzeData,
		domain.ActionDocProcessing:   r.processDocument,
		domain.ActionCodeGen:         r.generateCode,
		domain.ActionKnowledgeUpdate: r.updateKnowledge,
		domain.ActionSummary:         r.generateSummary,
	}

	if len(r.catalog) != len(r.handlers) {
		return nil, fmt.Errorf("action catalog lists %d actions but %d handlers are registered", len(r.catalog), len(r.handlers))
	}
	for _, d := range r.catalog {
		if err := domain.ValidateActionDescriptor(&d); err != nil {
			return nil, err
		}
		if _, ok := r.handlers[d.Name]; !ok {
			return nil, fmt.Errorf("action %s is cataloged but has no handler", d.Name)
		}
	}
	return r, nil
}

// Catalog returns the descriptors of all registered actions.
func (r *Registry) Catalog() []domain.ActionDescriptor {
	out := make([]domain.ActionDescriptor, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// Execute runs the named action. Handler errors and panics become error
// results; Execute itself never returns a Go error to the caller.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any, ownerID string) *domain.ActionResult {
	result := &domain.ActionResult{
		Action:     name,
		Parameters: params,
		Timestamp:  time.Now().UTC(),
		Status:     domain.ActionStatusError,
	}

	h, ok := r.handlers[name]
	if !ok {
		result.Error = fmt.Sprintf("action non supportée: %s", name)
		return result
	}

	payload, err := r.run(ctx, h, params, ownerID)
	if err != nil {
		log.Printf("actions: %s failed for owner %s: %v", name, ownerID, err)
		result.Error = err.Error()
		return result
	}

	result.Result = payload
	result.Status = domain.ActionStatusSuccess

	switch name {
	case domain.ActionWebSearch, domain.ActionDataAnalysis, domain.ActionDocProcessing:
		r.enrich(ctx, name, params, ownerID, payload)
	}

	return result
}

// run invokes a handler with panic containment.
func (r *Registry) run(ctx context.Context, h handler, params map[string]any, ownerID string) (payload map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			payload = nil
			err = fmt.Errorf("action panicked: %v", rec)
		}
	}()
	return h(ctx, params, ownerID)
}

func builtinDescriptors() []domain.ActionDescriptor {
	return []domain.ActionDescriptor{
		{
			Name:        domain.ActionWebSearch,
			Description: "Recherche d'informations sur le web",
			Parameters: []domain.ActionParameter{
				{Name: "query", Type: "string", Required: true, Description: "Termes de recherche"},
				{Name: "max_results", Type: "integer", Required: false, Description: "Nombre max de résultats"},
			},
		},
		{
			Name:        domain.ActionDataAnalysis,
			Description: "Analyse de données et génération d'insights",
			Parameters: []domain.ActionParameter{
				{Name: "data", Type: "object", Required: true, Description: "Données à analyser"},
				{Name: "analysis_type", Type: "string", Required: false, Description: "Type d'analyse"},
			},
		},
		{
			Name:        domain.ActionDocProcessing,
			Description: "Traitement et extraction d'informations de documents",
			Parameters: []domain.ActionParameter{
				{Name: "action", Type: "string", Required: true, Description: "Action (summarize, extract_keypoints)"},
				{Name: "content", Type: "string", Required: true, Description: "Contenu du document"},
			},
		},
		{
			Name:        domain.ActionCodeGen,
			Description: "Génération de code dans différents langages",
			Parameters: []domain.ActionParameter{
				{Name: "language", Type: "string", Required: true, Description: "Langage de programmation"},
				{Name: "task", Type: "string", Required: true, Description: "Description de la tâche"},
				{Name: "requirements", Type: "string", Required: false, Description: "Exigences supplémentaires"},
			},
		},
		{
			Name:        domain.ActionKnowledgeUpdate,
			Description: "Mise à jour de la base de connaissances",
			Parameters: []domain.ActionParameter{
				{Name: "text", Type: "string", Required: true, Description: "Texte à ajouter"},
				{Name: "source", Type: "string", Required: false, Description: "Source de l'information"},
			},
		},
		{
			Name:        domain.ActionSummary,
			Description: "Génération de résumés et synthèses",
			Parameters: []domain.ActionParameter{
				{Name: "conversation_id", Type: "string", Required: true, Description: "ID de la conversation"},
			},
		},
	}
}

// stringParam reads a string parameter, falling back when absent or mistyped.
func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intParam reads an integer parameter; JSON decoding yields float64.
func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}
