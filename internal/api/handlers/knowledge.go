package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/orbia-ai/orbia/internal/api"
	"github.com/orbia-ai/orbia/internal/api/middleware"
	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/vectorindex"
)

type KnowledgeReader interface {
	UserStats(ctx context.Context, ownerID string) (*domain.KnowledgeStats, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]*domain.KnowledgeEntry, error)
}

type IndexStats interface {
	Stats() vectorindex.Stats
}

type KnowledgeHandler struct {
	store KnowledgeReader
	index IndexStats
}

func NewKnowledgeHandler(store KnowledgeReader, index IndexStats) *KnowledgeHandler {
	return &KnowledgeHandler{store: store, index: index}
}

type KnowledgeStatsResponse struct {
	Total         int     `json:"total"`
	HighValue     int     `json:"high_value"`
	GraphKeywords int     `json:"graph_keywords"`
	AvgScore      float64 `json:"avg_score"`
}

func (h *KnowledgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.store.UserStats(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, KnowledgeStatsResponse{
		Total:         stats.Total,
		HighValue:     stats.HighValue,
		GraphKeywords: stats.GraphKeywords,
		AvgScore:      stats.AvgScore,
	})
}

type KnowledgeEntryResponse struct {
	ID              string  `json:"id"`
	Question        string  `json:"question"`
	Response        string  `json:"response"`
	InteractionType string  `json:"interaction_type"`
	ValueScore      float64 `json:"value_score"`
	UsageCount      int     `json:"usage_count"`
	CreatedAt       string  `json:"created_at"`
}

type KnowledgeListResponse struct {
	Items []*KnowledgeEntryResponse `json:"items"`
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.store.Recent(r.Context(), userID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*KnowledgeEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = &KnowledgeEntryResponse{
			ID:              e.ID,
			Question:        e.Question,
			Response:        e.Response,
			InteractionType: string(e.InteractionType),
			ValueScore:      e.ValueScore,
			UsageCount:      e.UsageCount,
			CreatedAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	api.Success(w, http.StatusOK, KnowledgeListResponse{Items: items})
}

func (h *KnowledgeHandler) IndexStats(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.index.Stats())
}
