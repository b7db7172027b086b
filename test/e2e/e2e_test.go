//go:build e2e

package e2e

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/orbia-ai/orbia/internal/domain"
)

func TestE2E_BootstrapAndAuth(t *testing.T) {
	env := SetupEnv(t)
	env.Bootstrap()

	t.Run("health is open", func(t *testing.T) {
		resp, err := env.Get("/health", "")
		if err != nil {
			t.Fatalf("health check failed: %v", err)
		}
		var health struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(resp.Data, &health); err != nil {
			t.Fatalf("failed to parse health: %v", err)
		}
		if health.Status != "ok" {
			t.Errorf("expected status ok, got %q", health.Status)
		}
	})

	t.Run("token has orb prefix", func(t *testing.T) {
		if !strings.HasPrefix(env.APIToken, "orb_") {
			t.Errorf("expected orb_ token, got %q", env.APIToken)
		}
	})

	t.Run("chat rejects missing token", func(t *testing.T) {
		_, err := env.Post("/chat", map[string]string{"message": "bonjour"}, "")
		if err == nil {
			t.Fatal("expected 401 without token")
		}
		if !strings.Contains(err.Error(), "401") {
			t.Errorf("expected 401, got: %v", err)
		}
	})

	t.Run("chat rejects bad token", func(t *testing.T) {
		badToken := "orb_" + strings.Repeat("0", 64)
		_, err := env.Post("/chat", map[string]string{"message": "bonjour"}, badToken)
		if err == nil {
			t.Fatal("expected 401 with unknown token")
		}
	})
}

func TestE2E_ChatConversationFlow(t *testing.T) {
	env := SetupEnv(t)
	env.Bootstrap()

	var conversationID string

	t.Run("first turn creates a conversation", func(t *testing.T) {
		resp, err := env.Post("/chat", map[string]string{
			"message": "Peux-tu m'expliquer comment fonctionne un pool de connexions ?",
		}, env.APIToken)
		if err != nil {
			t.Fatalf("chat failed: %v", err)
		}

		var reply struct {
			Message        string `json:"message"`
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(resp.Data, &reply); err != nil {
			t.Fatalf("failed to parse reply: %v", err)
		}
		if reply.Message == "" {
			t.Error("expected a non-empty reply")
		}
		if reply.ConversationID == "" {
			t.Fatal("expected a conversation id")
		}
		conversationID = reply.ConversationID
	})

	t.Run("second turn reuses the conversation", func(t *testing.T) {
		resp, err := env.Post("/chat", map[string]string{
			"message":         "Et comment le dimensionner correctement ?",
			"conversation_id": conversationID,
		}, env.APIToken)
		if err != nil {
			t.Fatalf("chat failed: %v", err)
		}

		var reply struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(resp.Data, &reply); err != nil {
			t.Fatalf("failed to parse reply: %v", err)
		}
		if reply.ConversationID != conversationID {
			t.Errorf("expected conversation %s, got %s", conversationID, reply.ConversationID)
		}
	})

	t.Run("list shows the conversation", func(t *testing.T) {
		resp, err := env.Get("/conversations", env.APIToken)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}

		var list struct {
			Items []struct {
				ID           string `json:"id"`
				MessageCount int    `json:"message_count"`
			} `json:"items"`
		}
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			t.Fatalf("failed to parse list: %v", err)
		}
		if len(list.Items) != 1 {
			t.Fatalf("expected 1 conversation, got %d", len(list.Items))
		}
		if list.Items[0].ID != conversationID {
			t.Errorf("unexpected conversation id %s", list.Items[0].ID)
		}
		if list.Items[0].MessageCount != 4 {
			t.Errorf("expected 4 messages after two turns, got %d", list.Items[0].MessageCount)
		}
	})

	t.Run("get returns the messages", func(t *testing.T) {
		resp, err := env.Get("/conversations/"+conversationID, env.APIToken)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}

		var conv struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(resp.Data, &conv); err != nil {
			t.Fatalf("failed to parse conversation: %v", err)
		}
		if len(conv.Messages) != 4 {
			t.Fatalf("expected 4 messages, got %d", len(conv.Messages))
		}
		if conv.Messages[0].Role != "user" {
			t.Errorf("expected first message from user, got %s", conv.Messages[0].Role)
		}
		if conv.Messages[1].Role != "assistant" {
			t.Errorf("expected second message from assistant, got %s", conv.Messages[1].Role)
		}
	})

	t.Run("other user cannot read it", func(t *testing.T) {
		otherResp, err := env.Post("/users", map[string]string{"name": "intrus"}, "")
		if err != nil {
			t.Fatalf("failed to create second user: %v", err)
		}
		var other struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(otherResp.Data, &other); err != nil {
			t.Fatalf("failed to parse user: %v", err)
		}

		keyResp, err := env.Post("/apikeys", map[string]string{"user_id": other.ID, "name": "intrus-key"}, "")
		if err != nil {
			t.Fatalf("failed to create second key: %v", err)
		}
		var key struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(keyResp.Data, &key); err != nil {
			t.Fatalf("failed to parse key: %v", err)
		}

		if _, err := env.Get("/conversations/"+conversationID, key.Token); err == nil {
			t.Fatal("expected not found for another user")
		}
	})

	t.Run("delete removes it", func(t *testing.T) {
		if _, err := env.Delete("/conversations/"+conversationID, env.APIToken); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := env.Get("/conversations/"+conversationID, env.APIToken); err == nil {
			t.Fatal("expected 404 after delete")
		}
	})
}

func TestE2E_LearningFlow(t *testing.T) {
	env := SetupEnv(t)
	env.Bootstrap()

	t.Run("chat enqueues a learning job", func(t *testing.T) {
		_, err := env.Post("/chat", map[string]string{
			"message": "Explique-moi les index PostgreSQL en détail s'il te plaît",
		}, env.APIToken)
		if err != nil {
			t.Fatalf("chat failed: %v", err)
		}

		counts, err := env.LearningJobRepo.CountByStatus(env.Ctx)
		if err != nil {
			t.Fatalf("failed to count jobs: %v", err)
		}
		if counts[domain.LearningJobStatusPending] == 0 {
			t.Fatal("expected a pending learning job after chat")
		}
	})

	t.Run("worker turns the job into knowledge", func(t *testing.T) {
		env.DrainLearningJobs()

		counts, err := env.LearningJobRepo.CountByStatus(env.Ctx)
		if err != nil {
			t.Fatalf("failed to count jobs: %v", err)
		}
		if counts[domain.LearningJobStatusCompleted] == 0 {
			t.Fatalf("expected a completed job, got %v", counts)
		}

		entries, err := env.KnowledgeRepo.ListRecent(env.Ctx, env.UserID, 10)
		if err != nil {
			t.Fatalf("failed to list knowledge: %v", err)
		}
		if len(entries) == 0 {
			t.Fatal("expected a knowledge entry after learning")
		}
		if len(entries[0].Embedding) == 0 {
			t.Error("expected the entry to carry an embedding")
		}
	})

	t.Run("stats reflect the learned entry", func(t *testing.T) {
		resp, err := env.Get("/knowledge/stats", env.APIToken)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}

		var stats struct {
			Total    int     `json:"total"`
			AvgScore float64 `json:"avg_score"`
		}
		if err := json.Unmarshal(resp.Data, &stats); err != nil {
			t.Fatalf("failed to parse stats: %v", err)
		}
		if stats.Total == 0 {
			t.Error("expected at least one knowledge entry in stats")
		}
		if stats.AvgScore <= 0 {
			t.Error("expected a positive average score")
		}
	})

	t.Run("knowledge list returns the entry", func(t *testing.T) {
		resp, err := env.Get("/knowledge?limit=5", env.APIToken)
		if err != nil {
			t.Fatalf("knowledge list failed: %v", err)
		}

		var list struct {
			Items []struct {
				Question   string  `json:"question"`
				ValueScore float64 `json:"value_score"`
			} `json:"items"`
		}
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			t.Fatalf("failed to parse knowledge list: %v", err)
		}
		if len(list.Items) == 0 {
			t.Fatal("expected knowledge entries")
		}
		if list.Items[0].ValueScore < 0.3 {
			t.Errorf("expected score above admission gate, got %.2f", list.Items[0].ValueScore)
		}
	})

	t.Run("index stats count the chunks", func(t *testing.T) {
		resp, err := env.Get("/index/stats", env.APIToken)
		if err != nil {
			t.Fatalf("index stats failed: %v", err)
		}

		var stats struct {
			TotalChunks int `json:"total_chunks"`
		}
		if err := json.Unmarshal(resp.Data, &stats); err != nil {
			t.Fatalf("failed to parse index stats: %v", err)
		}
		if stats.TotalChunks == 0 {
			t.Error("expected indexed chunks after learning")
		}
	})
}

func TestE2E_AgenticActions(t *testing.T) {
	env := SetupEnv(t)
	env.Bootstrap()

	t.Run("catalog lists the built-in actions", func(t *testing.T) {
		resp, err := env.Get("/agentic/actions", env.APIToken)
		if err != nil {
			t.Fatalf("catalog failed: %v", err)
		}

		var catalog struct {
			Actions []struct {
				Name string `json:"name"`
			} `json:"actions"`
		}
		if err := json.Unmarshal(resp.Data, &catalog); err != nil {
			t.Fatalf("failed to parse catalog: %v", err)
		}
		if len(catalog.Actions) == 0 {
			t.Fatal("expected a non-empty action catalog")
		}

		names := make(map[string]bool, len(catalog.Actions))
		for _, a := range catalog.Actions {
			names[a.Name] = true
		}
		if !names[domain.ActionWebSearch] {
			t.Errorf("expected %s in catalog, got %v", domain.ActionWebSearch, names)
		}
	})

	t.Run("web search action executes", func(t *testing.T) {
		resp, err := env.Post("/agentic/execute", map[string]any{
			"action": domain.ActionWebSearch,
			"parameters": map[string]any{
				"query": "météo à Paris",
			},
		}, env.APIToken)
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		var result struct {
			Action string `json:"action"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			t.Fatalf("failed to parse result: %v", err)
		}
		if result.Action != domain.ActionWebSearch {
			t.Errorf("unexpected action %s", result.Action)
		}
		if result.Status != string(domain.ActionStatusSuccess) {
			t.Errorf("expected success, got %s", result.Status)
		}
	})

	t.Run("unknown action reports an error result", func(t *testing.T) {
		resp, err := env.Post("/agentic/execute", map[string]any{
			"action":     "inconnu",
			"parameters": map[string]any{},
		}, env.APIToken)
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		var result struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			t.Fatalf("failed to parse result: %v", err)
		}
		if result.Status == string(domain.ActionStatusSuccess) {
			t.Error("expected a failed status for an unknown action")
		}
		if result.Error == "" {
			t.Error("expected an error message")
		}
	})
}
