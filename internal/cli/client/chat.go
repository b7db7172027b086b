package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ChatCmd creates the interactive chat command.
func ChatCmd() *cobra.Command {
	var (
		conversationID string
		noActions      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "Opens a REPL that keeps the conversation going across turns. Type 'exit' or Ctrl+D to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(conversationID, noActions)
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Resume an existing conversation")
	cmd.Flags().BoolVar(&noActions, "no-actions", false, "Disable agentic actions for the session")

	return cmd
}

func runChat(conversationID string, noActions bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	if conversationID != "" {
		fmt.Printf("Resuming conversation %s\n", conversationID)
	} else {
		fmt.Println("Starting a new conversation. Type 'exit' to quit.")
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}

		message := strings.TrimSpace(line)
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		reply, err := sendChatMessage(api, ChatRequest{
			Message:        message,
			ConversationID: conversationID,
			DisableActions: noActions,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		// Keep the same conversation for the rest of the session.
		conversationID = reply.ConversationID

		fmt.Printf("\n%s\n\n", reply.Message)
		if reply.ActionsExecuted {
			fmt.Println("(agentic action executed)")
		}
	}
}
