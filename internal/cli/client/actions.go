package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ActionParameter describes one parameter of an agentic action.
type ActionParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ActionInfo describes an available agentic action.
type ActionInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  []ActionParameter `json:"parameters"`
}

// ActionCatalog represents the action catalog response.
type ActionCatalog struct {
	Actions []ActionInfo `json:"actions"`
}

// ActionExecResult represents the result of an action execution.
type ActionExecResult struct {
	Action    string          `json:"action"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
}

// ActionsCmd creates the actions parent command.
func ActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Work with agentic actions",
		Long:  "List available actions and execute them directly",
	}

	cmd.AddCommand(ActionsListCmd())
	cmd.AddCommand(ActionsExecCmd())

	return cmd
}

// ActionsListCmd creates the actions list command.
func ActionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available agentic actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runActionsList(outputJSON)
		},
	}

	return cmd
}

func runActionsList(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/agentic/actions")
	if err != nil {
		return fmt.Errorf("failed to list actions: %w", err)
	}

	var catalog ActionCatalog
	if err := json.Unmarshal(resp.Data, &catalog); err != nil {
		return fmt.Errorf("failed to parse action catalog: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(catalog, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(catalog.Actions) == 0 {
		fmt.Println("No actions available.")
		return nil
	}

	fmt.Println("Available actions:")
	for _, a := range catalog.Actions {
		fmt.Printf("  %s: %s\n", a.Name, a.Description)
		for _, p := range a.Parameters {
			required := ""
			if p.Required {
				required = " (required)"
			}
			fmt.Printf("    --param %s=<%s>%s  %s\n", p.Name, p.Type, required, p.Description)
		}
	}

	return nil
}

// ActionsExecCmd creates the actions exec command.
func ActionsExecCmd() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "exec <action>",
		Short: "Execute an agentic action",
		Long:  "Execute an action by name with key=value parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runActionsExec(args[0], params, outputJSON)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Action parameter as key=value (repeatable)")

	return cmd
}

func runActionsExec(action string, params []string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	parameters := make(map[string]any, len(params))
	for _, p := range params {
		key, value, ok := splitParam(p)
		if !ok {
			return fmt.Errorf("invalid parameter %q (expected key=value)", p)
		}
		parameters[key] = value
	}

	resp, err := api.Post("/agentic/execute", map[string]any{
		"action":     action,
		"parameters": parameters,
	})
	if err != nil {
		return fmt.Errorf("failed to execute action: %w", err)
	}

	var result ActionExecResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse action result: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Action: %s\n", result.Action)
	fmt.Printf("Status: %s\n", result.Status)
	if result.Error != "" {
		fmt.Printf("Error: %s\n", result.Error)
	}
	if len(result.Result) > 0 {
		pretty, _ := json.MarshalIndent(json.RawMessage(result.Result), "", "  ")
		fmt.Printf("Result:\n%s\n", string(pretty))
	}

	return nil
}

func splitParam(p string) (key, value string, ok bool) {
	for i := 0; i < len(p); i++ {
		if p[i] == '=' {
			if i == 0 {
				return "", "", false
			}
			return p[:i], p[i+1:], true
		}
	}
	return "", "", false
}
