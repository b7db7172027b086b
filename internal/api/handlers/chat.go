package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/orbia-ai/orbia/internal/api"
	"github.com/orbia-ai/orbia/internal/api/middleware"
	"github.com/orbia-ai/orbia/internal/orchestrator"
)

type ChatService interface {
	HandleMessage(ctx context.Context, input orchestrator.Input) (*orchestrator.Reply, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	DisableActions bool   `json:"disable_actions,omitempty"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.svc.HandleMessage(r.Context(), orchestrator.Input{
		OwnerID:        userID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		DisableActions: req.DisableActions,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, reply)
}
