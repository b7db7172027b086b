package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orbia-ai/orbia/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUUIDGenerator struct {
	uuids []string
	index int
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.index >= len(m.uuids) {
		return "default-uuid"
	}
	id := m.uuids[m.index]
	m.index++
	return id
}

func testUser(id string) *domain.User {
	return domain.NewUser(id, "alice", time.Now().UTC())
}

func TestService_CreateUser(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockKeys := new(MockAPIKeyRepository)

	mockUsers.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == "user-123" && u.Name == "alice"
	})).Return(nil)

	service := NewService(mockUsers, mockKeys, NewMockUUIDGenerator("user-123"))
	user, err := service.CreateUser(ctx, "alice")

	require.NoError(t, err)
	assert.Equal(t, "user-123", user.ID)
	assert.Equal(t, "alice", user.Name)
	mockUsers.AssertExpectations(t)
}

func TestService_CreateUser_EmptyName(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockKeys := new(MockAPIKeyRepository)

	service := NewService(mockUsers, mockKeys, NewMockUUIDGenerator())
	_, err := service.CreateUser(ctx, "")

	assert.Error(t, err)
	mockUsers.AssertNotCalled(t, "Create")
}

func TestService_CreateAPIKey(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockKeys := new(MockAPIKeyRepository)

	mockUsers.On("GetByID", ctx, "user-123").Return(testUser("user-123"), nil)

	var storedHash string
	mockKeys.On("Create", ctx, mock.MatchedBy(func(key *domain.APIKey) bool {
		storedHash = key.KeyHash
		return key.UserID == "user-123" && key.Name == "clé principale" && key.ID == "key-1"
	})).Return(nil)

	service := NewService(mockUsers, mockKeys, NewMockUUIDGenerator("key-1"))
	token, err := service.CreateAPIKey(ctx, "user-123", "clé principale")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "orb_"))
	assert.True(t, IsValidAPIToken(token))
	// the plain token never reaches the repository
	assert.NotEqual(t, token, storedHash)
	assert.Len(t, storedHash, 64)
	mockKeys.AssertExpectations(t)
}

func TestService_CreateAPIKey_UnknownUser(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockKeys := new(MockAPIKeyRepository)

	mockUsers.On("GetByID", ctx, "ghost").Return(nil, domain.ErrUserNotFound)

	service := NewService(mockUsers, mockKeys, NewMockUUIDGenerator())
	_, err := service.CreateAPIKey(ctx, "ghost", "clé")

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	mockKeys.AssertNotCalled(t, "Create")
}

func TestService_CreateAPIKeyWithToken(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockKeys := new(MockAPIKeyRepository)

	token := "orb_" + strings.Repeat("ab", 32)

	mockUsers.On("GetByID", ctx, "user-123").Return(testUser("user-123"), nil)
	mockKeys.On("Create", ctx, mock.MatchedBy(func(key *domain.APIKey) bool {
		return key.UserID == "user-123" && key.KeyHash != token
	})).Return(nil)

	service := NewService(mockUsers, mockKeys, NewMockUUIDGenerator("key-1"))
	err := service.CreateAPIKeyWithToken(ctx, "user-123", "bootstrap", token)

	require.NoError(t, err)
	mockKeys.AssertExpectations(t)
}

func TestService_CreateAPIKeyWithToken_BadFormat(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockKeys := new(MockAPIKeyRepository)

	service := NewService(mockUsers, mockKeys, NewMockUUIDGenerator())
	err := service.CreateAPIKeyWithToken(ctx, "user-123", "bootstrap", "nope")

	assert.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	mockKeys.AssertNotCalled(t, "Create")
}

func TestService_ValidateAPIKey(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	mockKeys := new(MockAPIKeyRepository)

	token := "orb_" + strings.Repeat("0f", 32)
	key := &domain.APIKey{
		ID:        "key-1",
		UserID:    "user-123",
		Name:      "clé principale",
		KeyHash:   "stored-hash",
		CreatedAt: time.Now().UTC(),
	}

	mockKeys.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(key, nil)

	service := NewService(mockUsers, mockKeys, NewMockUUIDGenerator())
	userID, err := service.ValidateAPIKey(ctx, token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestService_ValidateAPIKey_BadFormat(t *testing.T) {
	ctx := context.Background()
	service := NewService(new(MockUserRepository), new(MockAPIKeyRepository), NewMockUUIDGenerator())

	for _, token := range []string{"", "orb_short", "sk_" + strings.Repeat("ab", 32), strings.Repeat("ab", 34)} {
		_, err := service.ValidateAPIKey(ctx, token)
		assert.ErrorIs(t, err, domain.ErrInvalidAPIKey, "token %q", token)
	}
}

func TestService_ValidateAPIKey_Unknown(t *testing.T) {
	ctx := context.Background()
	mockKeys := new(MockAPIKeyRepository)
	mockKeys.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(nil, domain.ErrAPIKeyNotFound)

	service := NewService(new(MockUserRepository), mockKeys, NewMockUUIDGenerator())
	_, err := service.ValidateAPIKey(ctx, "orb_"+strings.Repeat("ab", 32))

	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}

func TestService_ValidateAPIKey_Revoked(t *testing.T) {
	ctx := context.Background()
	mockKeys := new(MockAPIKeyRepository)

	revokedAt := time.Now().UTC()
	key := &domain.APIKey{
		ID:        "key-1",
		UserID:    "user-123",
		KeyHash:   "stored-hash",
		CreatedAt: revokedAt.Add(-time.Hour),
		RevokedAt: &revokedAt,
	}
	mockKeys.On("GetByHash", ctx, mock.AnythingOfType("string")).Return(key, nil)

	service := NewService(new(MockUserRepository), mockKeys, NewMockUUIDGenerator())
	_, err := service.ValidateAPIKey(ctx, "orb_"+strings.Repeat("ab", 32))

	assert.ErrorIs(t, err, domain.ErrAPIKeyRevoked)
}

func TestIsValidAPIToken(t *testing.T) {
	assert.True(t, IsValidAPIToken("orb_"+strings.Repeat("0123456789abcdef", 4)))
	assert.True(t, IsValidAPIToken("orb_"+strings.Repeat("ABCDEF0123456789", 4)))
	assert.False(t, IsValidAPIToken("orb_"+strings.Repeat("g", 64)))
	assert.False(t, IsValidAPIToken("orb_"+strings.Repeat("a", 63)))
	assert.False(t, IsValidAPIToken(strings.Repeat("a", 68)))
}
