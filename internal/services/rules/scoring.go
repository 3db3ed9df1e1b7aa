package rules

import (
	"math"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

// CalculateScores turns blocker findings into pillar scores and a weighted
// total. The per-pillar penalty amplifies the average severity by 20% per
// additional finding, so several mid-severity blockers in one pillar hurt more
// than their average alone would.
func CalculateScores(blockers []domain.Blocker, manifestModifier int) domain.Scores {
	byPillar := make(map[domain.Pillar][]int)
	for _, b := range blockers {
		byPillar[b.Pillar] = append(byPillar[b.Pillar], b.Severity)
	}

	var pillars domain.PillarScores
	total := 0.0
	for _, pillar := range domain.Pillars() {
		score := pillarScore(byPillar[pillar])
		switch pillar {
		case domain.PillarClarity:
			pillars.Clarity = score
		case domain.PillarSpecificity:
			pillars.Specificity = score
		case domain.PillarProof:
			pillars.Proof = score
		case domain.PillarAudience:
			pillars.Audience = score
		}
		total += float64(score) * float64(domain.PillarWeights[pillar]) / 100.0
	}

	return domain.Scores{
		Total:   clampScore(int(math.Round(total)) + manifestModifier),
		Pillars: pillars,
	}
}

func pillarScore(severities []int) int {
	if len(severities) == 0 {
		return 100
	}

	sum := 0
	for _, s := range severities {
		sum += s
	}
	avg := float64(sum) / float64(len(severities))

	penalty := avg * (1 + 0.2*float64(len(severities)-1))
	if penalty > 100 {
		penalty = 100
	}

	score := int(math.Round(100 - penalty))
	if score < 0 {
		score = 0
	}
	return score
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
