package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/orbia-ai/orbia/internal/domain"
)

func (r *Registry) analyzeData(ctx context.Context, params map[string]any, ownerID string) (map[string]any, error) {
	data, present := params["data"]
	if provided, ok := params["data_provided"].(bool); ok && !provided {
		present = false
	}
	if !present || data == nil || emptyData(data) {
		return nil, domain.NewDomainError(domain.ErrCodeValidation,
			"aucune donnée fournie pour l'analyse; exemple: 'Analyse ces chiffres: 10, 20, 30, 40'")
	}
	analysisType := stringParam(params, "analysis_type", "summary")

	switch analysisType {
	case "numeric":
		if items, ok := data.([]any); ok {
			return analyzeNumbers(items)
		}
	case "text":
		if text, ok := data.(string); ok {
			return analyzeText(text), nil
		}
	}

	return nil, domain.NewDomainError(domain.ErrCodeValidation,
		fmt.Sprintf("type d'analyse non supporté ou données invalides: %s", analysisType))
}

// analyzeNumbers computes basic statistics over the parseable entries,
// ignoring the rest.
func analyzeNumbers(items []any) (map[string]any, error) {
	var numbers []float64
	for _, item := range items {
		if n, ok := toFloat(item); ok {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "aucune valeur numérique exploitable")
	}

	sum := 0.0
	minimum, maximum := numbers[0], numbers[0]
	for _, n := range numbers {
		sum += n
		if n < minimum {
			minimum = n
		}
		if n > maximum {
			maximum = n
		}
	}

	return map[string]any{
		"count":   len(numbers),
		"sum":     sum,
		"average": sum / float64(len(numbers)),
		"min":     minimum,
		"max":     maximum,
		"type":    "numeric_analysis",
	}, nil
}

func analyzeText(text string) map[string]any {
	return map[string]any{
		"word_count":      len(strings.Fields(text)),
		"character_count": len([]rune(text)),
		"type":            "text_analysis",
	}
}

func emptyData(data any) bool {
	switch d := data.(type) {
	case []any:
		return len(d) == 0
	case string:
		return strings.TrimSpace(d) == ""
	case map[string]any:
		return len(d) == 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
