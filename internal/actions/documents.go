package actions

import (
	"context"
	"fmt"

	"github.com/orbia-ai/orbia/internal/domain"
)

func (r *Registry) processDocument(ctx context.Context, params map[string]any, ownerID string) (map[string]any, error) {
	action := stringParam(params, "action", "summarize")
	content := stringParam(params, "content", "")
	if content == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "contenu du document requis")
	}

	switch action {
	case "summarize":
		prompt := "Résumez ce document de manière concise et informative:\n\n" + content
		summary, err := r.llm.Generate(ctx, []domain.Message{{Role: domain.RoleUser, Content: prompt}})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"action":          "summarize",
			"original_length": len([]rune(content)),
			"summary":         summary,
			"summary_length":  len([]rune(summary)),
		}, nil

	case "extract_keypoints":
		prompt := "Extrayez les points clés de ce document sous forme de liste:\n\n" + content
		keypoints, err := r.llm.Generate(ctx, []domain.Message{{Role: domain.RoleUser, Content: prompt}})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"action":    "extract_keypoints",
			"keypoints": keypoints,
		}, nil
	}

	return nil, domain.NewDomainError(domain.ErrCodeValidation,
		fmt.Sprintf("action de document non supportée: %s", action))
}

func (r *Registry) generateCode(ctx context.Context, params map[string]any, ownerID string) (map[string]any, error) {
	language := stringParam(params, "language", "python")
	task := stringParam(params, "task", "")
	if task == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "description de la tâche requise")
	}
	requirements := stringParam(params, "requirements", "")

	prompt := fmt.Sprintf(`Génère du code %s pour: %s
Exigences: %s

Fournis le code complet avec des commentaires explicites.`, language, task, requirements)

	code, err := r.llm.Generate(ctx, []domain.Message{{Role: domain.RoleUser, Content: prompt}})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"language":    language,
		"task":        task,
		"code":        code,
		"code_length": len([]rune(code)),
	}, nil
}
