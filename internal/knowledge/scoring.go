package knowledge

import (
	"math"
	"strings"

	"github.com/orbia-ai/orbia/internal/domain"
)

// minLearnableLength is the floor under which a response carries no
// reusable knowledge.
const minLearnableLength = 50

// ValueScore rates how reusable a response is, in [0,1]. Length, word count
// and structural markers each contribute; responses under 50 characters
// score zero outright.
func ValueScore(response string) float64 {
	trimmed := strings.TrimSpace(response)
	if len(trimmed) < minLearnableLength {
		return 0.0
	}

	lengthScore := math.Min(float64(len(response))/1000, 1.0)
	complexityScore := math.Min(float64(len(strings.Fields(response)))/100, 1.0)

	structureScore := 0.5
	if strings.ContainsAny(response, "\n") ||
		strings.Contains(response, "- ") ||
		strings.Contains(response, "* ") {
		structureScore = 1.0
	}

	composite := lengthScore*0.4 + complexityScore*0.3 + structureScore*0.3
	return round2(composite)
}

// EnhancementScore rates how much retrieved knowledge enriches a query:
// average entry quality scaled by quantity, normalized over five items.
func EnhancementScore(entries []*domain.KnowledgeEntry) float64 {
	if len(entries) == 0 {
		return 0.0
	}

	var total float64
	for _, e := range entries {
		total += e.ValueScore
	}
	avgQuality := total / float64(len(entries))
	quantityFactor := math.Min(float64(len(entries))/5, 1.0)

	return round2(avgQuality * quantityFactor)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
