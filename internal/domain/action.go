package domain

import (
	"fmt"
	"time"
)

// Action names known to the registry.
const (
	ActionWebSearch       = "web_search"
	ActionDataAnalysis    = "data_analysis"
	ActionDocProcessing   = "document_processing"
	ActionCodeGen         = "code_generation"
	ActionKnowledgeUpdate = "knowledge_update"
	ActionSummary         = "summary_generation"
)

// ActionParameter describes one parameter of an action.
type ActionParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// ActionDescriptor is a static catalog entry for a registered action.
// Descriptors are immutable and defined at startup.
type ActionDescriptor struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  []ActionParameter `json:"parameters"`
}

// ActionStatus is the outcome class of an action execution.
type ActionStatus string

const (
	ActionStatusSuccess ActionStatus = "success"
	ActionStatusError   ActionStatus = "error"
)

// ActionResult is the uniform envelope returned by the action registry. A
// failed handler yields a populated Error field, never a raised error.
type ActionResult struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Status     ActionStatus   `json:"status"`
}

// Succeeded reports whether the action completed without error.
func (r *ActionResult) Succeeded() bool {
	return r.Status == ActionStatusSuccess
}

// ValidateActionDescriptor validates an ActionDescriptor instance.
func ValidateActionDescriptor(d *ActionDescriptor) error {
	if d == nil {
		return fmt.Errorf("action descriptor cannot be nil")
	}
	if d.Name == "" {
		return fmt.Errorf("action descriptor Name is required")
	}
	if d.Description == "" {
		return fmt.Errorf("action descriptor Description is required")
	}
	for i, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("action %s parameter %d has no name", d.Name, i)
		}
		if p.Type == "" {
			return fmt.Errorf("action %s parameter %q has no type", d.Name, p.Name)
		}
	}
	return nil
}

// Classification is the intent router's verdict for a message. Action is
// empty when no action clears the confidence threshold.
type Classification struct {
	Action     string         `json:"action_type,omitempty"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// IsActionable reports whether the classification selects a live action at
// the given threshold.
func (c *Classification) IsActionable(threshold float64) bool {
	return c.Action != "" && c.Confidence > threshold
}
