package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	DisableActions bool   `json:"disable_actions,omitempty"`
}

// ChatSource describes a knowledge chunk that grounded a reply.
type ChatSource struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	OwnerID string `json:"owner_id"`
}

// ChatReply represents the chat API response.
type ChatReply struct {
	Message         string          `json:"message"`
	ConversationID  string          `json:"conversation_id"`
	ActionsExecuted bool            `json:"actions_executed"`
	ActionResult    json.RawMessage `json:"action_results,omitempty"`
	HasContext      bool            `json:"has_context"`
	ContextCount    int             `json:"context_count,omitempty"`
	Sources         []ChatSource    `json:"sources,omitempty"`
}

// AskCmd creates the ask command for one-shot questions.
func AskCmd() *cobra.Command {
	var (
		conversationID string
		noActions      bool
	)

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask a single question",
		Long:  "Sends one message and prints the assistant's reply.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(args[0], conversationID, noActions, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Continue an existing conversation")
	cmd.Flags().BoolVar(&noActions, "no-actions", false, "Disable agentic actions for this turn")

	return cmd
}

func runAsk(message, conversationID string, noActions, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	reply, err := sendChatMessage(api, ChatRequest{
		Message:        message,
		ConversationID: conversationID,
		DisableActions: noActions,
	})
	if err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(reply, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(reply.Message)
	if reply.ActionsExecuted {
		fmt.Println("\n(agentic action executed)")
	}
	if reply.HasContext {
		fmt.Printf("\nGrounded on %d knowledge chunks\n", reply.ContextCount)
	}
	fmt.Printf("Conversation: %s\n", reply.ConversationID)

	return nil
}

func sendChatMessage(api *APIClient, req ChatRequest) (*ChatReply, error) {
	resp, err := api.Post("/chat", req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	var reply ChatReply
	if err := json.Unmarshal(resp.Data, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse chat reply: %w", err)
	}

	return &reply, nil
}
