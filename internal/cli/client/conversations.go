package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ConversationSummary represents a conversation in list responses.
type ConversationSummary struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	IsAgentic    bool          `json:"is_agentic"`
	MessageCount int           `json:"message_count"`
	Messages     []ChatMessage `json:"messages,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ConversationListResponse represents the paginated list response.
type ConversationListResponse struct {
	Items   []ConversationSummary `json:"items"`
	Cursor  string                `json:"cursor,omitempty"`
	HasMore bool                  `json:"has_more"`
}

// ConversationsCmd creates the conversations parent command.
func ConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convos"},
		Short:   "Manage conversations",
		Long:    "List, show, and delete conversations",
	}

	cmd.AddCommand(ConversationsListCmd())
	cmd.AddCommand(ConversationsShowCmd())
	cmd.AddCommand(ConversationsDeleteCmd())

	return cmd
}

// ConversationsListCmd creates the conversations list command.
func ConversationsListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your conversations",
		Long:  "List conversations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runConversationsList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runConversationsList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/conversations?limit=%d", limit)
	if cursor != "" {
		path += "&cursor=" + cursor
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	var list ConversationListResponse
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		return fmt.Errorf("failed to parse conversations: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(list.Items) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	fmt.Println("Conversations:")
	for _, c := range list.Items {
		kind := "chat"
		if c.IsAgentic {
			kind = "agentic"
		}
		fmt.Printf("  %s: %s (%s, %d messages, updated: %s)\n", c.ID, c.Title, kind, c.MessageCount, c.UpdatedAt)
	}
	if list.HasMore && list.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", list.Cursor)
	}

	return nil
}

// ConversationsShowCmd creates the conversations show command.
func ConversationsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a conversation with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runConversationsShow(args[0], outputJSON)
		},
	}

	return cmd
}

func runConversationsShow(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/conversations/" + id)
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	var conv ConversationSummary
	if err := json.Unmarshal(resp.Data, &conv); err != nil {
		return fmt.Errorf("failed to parse conversation: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(conv, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%s (%d messages)\n\n", conv.Title, conv.MessageCount)
	for _, m := range conv.Messages {
		fmt.Printf("[%s] %s\n%s\n\n", m.Timestamp, m.Role, m.Content)
	}

	return nil
}

// ConversationsDeleteCmd creates the conversations delete command.
func ConversationsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runConversationsDelete(args[0], outputJSON)
		},
	}

	return cmd
}

func runConversationsDelete(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	if _, err := api.Delete("/conversations/" + id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	if outputJSON {
		data := map[string]interface{}{"id": id, "deleted": true}
		output, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Conversation %s deleted\n", id)
	}

	return nil
}
