package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbia-ai/orbia/internal/api"
	"github.com/orbia-ai/orbia/internal/api/handlers"
	"github.com/orbia-ai/orbia/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator       middleware.AuthValidator
	ChatHandler         *handlers.ChatHandler
	ConversationHandler *handlers.ConversationHandler
	AgenticHandler      *handlers.AgenticHandler
	KnowledgeHandler    *handlers.KnowledgeHandler
	AuthHandler         *handlers.AuthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", cfg.ConversationHandler.List)
			r.Get("/{id}", cfg.ConversationHandler.Get)
			r.Delete("/{id}", cfg.ConversationHandler.Delete)
		})

		r.Route("/agentic", func(r chi.Router) {
			r.Get("/actions", cfg.AgenticHandler.ListActions)
			r.Post("/execute", cfg.AgenticHandler.Execute)
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Get("/stats", cfg.KnowledgeHandler.Stats)
		})

		r.Get("/index/stats", cfg.KnowledgeHandler.IndexStats)
	})

	r.Post("/users", cfg.AuthHandler.CreateUser)
	r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)

	return r
}
