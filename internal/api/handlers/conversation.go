package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/orbia-ai/orbia/internal/api"
	"github.com/orbia-ai/orbia/internal/api/middleware"
	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/pagination"
	"github.com/orbia-ai/orbia/internal/repository"
)

type ConversationStore interface {
	Get(ctx context.Context, ownerID, id string) (*domain.Conversation, error)
	ListByOwner(ctx context.Context, ownerID string, cursor *pagination.Cursor, limit int) (*repository.ConversationPageResult, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type ConversationHandler struct {
	store ConversationStore
}

func NewConversationHandler(store ConversationStore) *ConversationHandler {
	return &ConversationHandler{store: store}
}

type MessageResponse struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ConversationResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	IsAgentic    bool              `json:"is_agentic"`
	MessageCount int               `json:"message_count"`
	Messages     []MessageResponse `json:"messages,omitempty"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

func conversationToResponse(c *domain.Conversation, withMessages bool) *ConversationResponse {
	resp := &ConversationResponse{
		ID:           c.ID,
		Title:        c.Title,
		IsAgentic:    c.IsAgentic,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if withMessages {
		resp.Messages = make([]MessageResponse, len(c.Messages))
		for i, m := range c.Messages {
			resp.Messages[i] = MessageResponse{
				Role:      string(m.Role),
				Content:   m.Content,
				Timestamp: m.Timestamp.Format("2006-01-02T15:04:05Z"),
				Metadata:  m.Metadata,
			}
		}
	}
	return resp
}

type ConversationListResponse struct {
	Items   []*ConversationResponse `json:"items"`
	Cursor  string                  `json:"cursor,omitempty"`
	HasMore bool                    `json:"has_more"`
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.store.ListByOwner(r.Context(), userID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ConversationResponse, len(page.Items))
	for i, c := range page.Items {
		items[i] = conversationToResponse(c, false)
	}

	api.Success(w, http.StatusOK, ConversationListResponse{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	conversation, err := h.store.Get(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, conversationToResponse(conversation, true))
}

func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.store.Delete(r.Context(), userID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"deleted": id})
}
