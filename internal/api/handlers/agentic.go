package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/orbia-ai/orbia/internal/api"
	"github.com/orbia-ai/orbia/internal/api/middleware"
	"github.com/orbia-ai/orbia/internal/domain"
)

type ActionExecutor interface {
	Catalog() []domain.ActionDescriptor
	Execute(ctx context.Context, name string, params map[string]any, ownerID string) *domain.ActionResult
}

// AgenticHandler exposes the action catalog and direct action execution,
// bypassing intent classification.
type AgenticHandler struct {
	registry ActionExecutor
}

func NewAgenticHandler(registry ActionExecutor) *AgenticHandler {
	return &AgenticHandler{registry: registry}
}

type ActionCatalogResponse struct {
	Actions []domain.ActionDescriptor `json:"actions"`
}

func (h *AgenticHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, ActionCatalogResponse{Actions: h.registry.Catalog()})
}

type ExecuteActionRequest struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

func (h *AgenticHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ExecuteActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Action == "" {
		api.Error(w, http.StatusBadRequest, "action is required")
		return
	}
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}

	result := h.registry.Execute(r.Context(), req.Action, req.Parameters, userID)
	api.Success(w, http.StatusOK, result)
}
