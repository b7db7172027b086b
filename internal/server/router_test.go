package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orbia-ai/orbia/internal/api/handlers"
	"github.com/orbia-ai/orbia/internal/domain"
	"github.com/orbia-ai/orbia/internal/orchestrator"
	"github.com/orbia-ai/orbia/internal/pagination"
	"github.com/orbia-ai/orbia/internal/repository"
	"github.com/orbia-ai/orbia/internal/vectorindex"
)

const testToken = "orb_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) HandleMessage(ctx context.Context, input orchestrator.Input) (*orchestrator.Reply, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orchestrator.Reply), args.Error(1)
}

type MockConversationStore struct {
	mock.Mock
}

func (m *MockConversationStore) Get(ctx context.Context, ownerID, id string) (*domain.Conversation, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationStore) ListByOwner(ctx context.Context, ownerID string, cursor *pagination.Cursor, limit int) (*repository.ConversationPageResult, error) {
	args := m.Called(ctx, ownerID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ConversationPageResult), args.Error(1)
}

func (m *MockConversationStore) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockActionExecutor struct {
	mock.Mock
}

func (m *MockActionExecutor) Catalog() []domain.ActionDescriptor {
	args := m.Called()
	return args.Get(0).([]domain.ActionDescriptor)
}

func (m *MockActionExecutor) Execute(ctx context.Context, name string, params map[string]any, ownerID string) *domain.ActionResult {
	args := m.Called(ctx, name, params, ownerID)
	return args.Get(0).(*domain.ActionResult)
}

type MockKnowledgeReader struct {
	mock.Mock
}

func (m *MockKnowledgeReader) UserStats(ctx context.Context, ownerID string) (*domain.KnowledgeStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeStats), args.Error(1)
}

func (m *MockKnowledgeReader) Recent(ctx context.Context, ownerID string, limit int) ([]*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeEntry), args.Error(1)
}

type MockIndexStats struct {
	mock.Mock
}

func (m *MockIndexStats) Stats() vectorindex.Stats {
	args := m.Called()
	return args.Get(0).(vectorindex.Stats)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) CreateAPIKey(ctx context.Context, userID, name string) (string, error) {
	args := m.Called(ctx, userID, name)
	return args.String(0), args.Error(1)
}

type routerFixture struct {
	router    http.Handler
	validator *MockAuthValidator
	chat      *MockChatService
	convos    *MockConversationStore
	registry  *MockActionExecutor
	knowledge *MockKnowledgeReader
	index     *MockIndexStats
	auth      *MockAuthService
}

func setupRouter() *routerFixture {
	f := &routerFixture{
		validator: new(MockAuthValidator),
		chat:      new(MockChatService),
		convos:    new(MockConversationStore),
		registry:  new(MockActionExecutor),
		knowledge: new(MockKnowledgeReader),
		index:     new(MockIndexStats),
		auth:      new(MockAuthService),
	}

	f.router = NewRouter(RouterConfig{
		AuthValidator:       f.validator,
		ChatHandler:         handlers.NewChatHandler(f.chat),
		ConversationHandler: handlers.NewConversationHandler(f.convos),
		AgenticHandler:      handlers.NewAgenticHandler(f.registry),
		KnowledgeHandler:    handlers.NewKnowledgeHandler(f.knowledge, f.index),
		AuthHandler:         handlers.NewAuthHandler(f.auth),
	})
	return f
}

func TestRouter_HealthEndpoint(t *testing.T) {
	f := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	f := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/chat"},
		{http.MethodGet, "/conversations"},
		{http.MethodGet, "/conversations/123"},
		{http.MethodDelete, "/conversations/123"},
		{http.MethodGet, "/agentic/actions"},
		{http.MethodPost, "/agentic/execute"},
		{http.MethodGet, "/knowledge"},
		{http.MethodGet, "/knowledge/stats"},
		{http.MethodGet, "/index/stats"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			f.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	f.validator.AssertExpectations(t)
}

func TestRouter_Chat(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)
	f.chat.On("HandleMessage", mock.Anything, orchestrator.Input{
		OwnerID: "user-789",
		Message: "bonjour",
	}).Return(&orchestrator.Reply{
		Message:        "Bonjour ! Comment puis-je vous aider ?",
		ConversationID: "conv-1",
	}, nil)

	body := strings.NewReader(`{"message": "bonjour"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data orchestrator.Reply `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conv-1", resp.Data.ConversationID)
	f.chat.AssertExpectations(t)
}

func TestRouter_Chat_EmptyMessage(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": ""}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.chat.AssertNotCalled(t, "HandleMessage", mock.Anything, mock.Anything)
}

func TestRouter_ConversationList(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)

	now := time.Now().UTC()
	page := &repository.ConversationPageResult{
		Items: []*domain.Conversation{
			{
				ID:        "conv-1",
				OwnerID:   "user-789",
				Title:     "Comment déployer ?",
				Messages:  []domain.Message{{Role: domain.RoleUser, Content: "Comment déployer ?", Timestamp: now}},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		HasMore: false,
	}
	f.convos.On("ListByOwner", mock.Anything, "user-789", (*pagination.Cursor)(nil), 20).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data handlers.ConversationListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "conv-1", resp.Data.Items[0].ID)
	assert.Equal(t, 1, resp.Data.Items[0].MessageCount)
	assert.Empty(t, resp.Data.Items[0].Messages)
}

func TestRouter_ConversationGet_NotFound(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)
	f.convos.On("Get", mock.Anything, "user-789", "ghost").Return(nil, domain.ErrConversationNotFound)

	req := httptest.NewRequest(http.MethodGet, "/conversations/ghost", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AgenticActions(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)
	f.registry.On("Catalog").Return([]domain.ActionDescriptor{
		{Name: "web_search", Description: "Rechercher des informations sur le web"},
	})

	req := httptest.NewRequest(http.MethodGet, "/agentic/actions", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data handlers.ActionCatalogResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Actions, 1)
	assert.Equal(t, "web_search", resp.Data.Actions[0].Name)
}

func TestRouter_AgenticExecute(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)
	f.registry.On("Execute", mock.Anything, "data_analysis", map[string]any{"data": []any{1.0, 2.0}}, "user-789").
		Return(&domain.ActionResult{
			Action: "data_analysis",
			Status: domain.ActionStatusSuccess,
			Result: map[string]any{"count": 2},
		})

	body := strings.NewReader(`{"action": "data_analysis", "parameters": {"data": [1, 2]}}`)
	req := httptest.NewRequest(http.MethodPost, "/agentic/execute", body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.registry.AssertExpectations(t)
}

func TestRouter_KnowledgeStats(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)
	f.knowledge.On("UserStats", mock.Anything, "user-789").Return(&domain.KnowledgeStats{
		OwnerID:   "user-789",
		Total:     12,
		HighValue: 3,
		AvgScore:  0.55,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/knowledge/stats", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data handlers.KnowledgeStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Data.Total)
	assert.Equal(t, 3, resp.Data.HighValue)
}

func TestRouter_IndexStats(t *testing.T) {
	f := setupRouter()

	f.validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)
	f.index.On("Stats").Return(vectorindex.Stats{
		TotalChunks:    42,
		IndexKind:      "in_memory_cosine",
		EmbeddingModel: "text-embedding-3-small",
	})

	req := httptest.NewRequest(http.MethodGet, "/index/stats", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data vectorindex.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.Data.TotalChunks)
}

func TestRouter_CreateUser_NoAuthRequired(t *testing.T) {
	f := setupRouter()

	f.auth.On("CreateUser", mock.Anything, "alice").Return(domain.NewUser("user-123", "alice", time.Now().UTC()), nil)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name": "alice"}`))
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.auth.AssertExpectations(t)
}
