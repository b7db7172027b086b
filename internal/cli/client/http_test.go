package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "orb_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAPIClient_Get_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/knowledge/stats", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"total": 3}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(testAPIKey, srv.URL)
	require.NoError(t, err)

	resp, err := api.Get("/knowledge/stats")
	require.NoError(t, err)

	var data map[string]int
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 3, data["total"])
}

func TestAPIClient_Post_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bonjour", body["message"])

		w.Write([]byte(`{"data": {"message": "salut", "conversation_id": "conv-1"}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(testAPIKey, srv.URL)
	require.NoError(t, err)

	resp, err := api.Post("/chat", map[string]string{"message": "bonjour"})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "conv-1")
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "conversation not found"}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(testAPIKey, srv.URL)
	require.NoError(t, err)

	_, err = api.Get("/conversations/missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "conversation not found", apiErr.Message)
}

func TestAPIClient_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(testAPIKey, srv.URL)
	require.NoError(t, err)

	_, err = api.Get("/health")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "upstream unavailable")
}

func TestAPIClient_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		w.Write([]byte(`{"data": {"deleted": "conv-1"}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(testAPIKey, srv.URL)
	require.NoError(t, err)

	resp, err := api.Delete("/conversations/conv-1")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "deleted")
}

func TestNewAPIClientWithCmd_MissingKey(t *testing.T) {
	t.Setenv("ORBIA_API_KEY", "")
	t.Setenv("ORBIA_API_URL", "")

	tmpDir := t.TempDir()
	oldGetConfigPath := getConfigPathFunc
	getConfigPathFunc = func() (string, error) {
		return tmpDir + "/config.json", nil
	}
	defer func() { getConfigPathFunc = oldGetConfigPath }()

	_, err := NewAPIClientWithCmd(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORBIA_API_KEY not set")
}
