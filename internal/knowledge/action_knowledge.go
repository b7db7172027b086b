package knowledge

import "github.com/orbia-ai/orbia/internal/domain"

// actionKnowledge is the static best-practices catalog, keyed by action.
// Only actions with curated guidance appear here.
var actionKnowledge = map[string]domain.ActionKnowledge{
	domain.ActionWebSearch: {
		Action:      domain.ActionWebSearch,
		Description: "Recherche d'informations sur le web",
		BestPractices: []string{
			"Utiliser des termes de recherche spécifiques",
			"Vérifier la crédibilité des sources",
			"Croiser les informations multiples",
		},
	},
	domain.ActionCodeGen: {
		Action:      domain.ActionCodeGen,
		Description: "Génération de code programmatique",
		BestPractices: []string{
			"Spécifier le langage de programmation",
			"Définir des exigences claires",
			"Inclure des exemples de code",
		},
	},
	domain.ActionDataAnalysis: {
		Action:      domain.ActionDataAnalysis,
		Description: "Analyse de données et statistiques",
		BestPractices: []string{
			"Fournir des données structurées",
			"Préciser le type d'analyse souhaitée",
			"Inclure des métadonnées contextuelles",
		},
	},
}

// ActionBestPractices returns the static guidance for an action, or nil when
// none is curated.
func ActionBestPractices(action string) *domain.ActionKnowledge {
	if ak, ok := actionKnowledge[action]; ok {
		copied := ak
		return &copied
	}
	return nil
}
