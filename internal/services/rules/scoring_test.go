package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

func blocker(pillar domain.Pillar, severity int) domain.Blocker {
	return domain.Blocker{Code: "TEST", Pillar: pillar, Severity: severity}
}

func TestCalculateScores_NoBlockers(t *testing.T) {
	scores := CalculateScores(nil, 0)

	assert.Equal(t, 100, scores.Total)
	assert.Equal(t, 100, scores.Pillars.Clarity)
	assert.Equal(t, 100, scores.Pillars.Specificity)
	assert.Equal(t, 100, scores.Pillars.Proof)
	assert.Equal(t, 100, scores.Pillars.Audience)
}

func TestCalculateScores_PileOnFormula(t *testing.T) {
	// One severity-40 blocker: penalty = 40, score = 60.
	scores := CalculateScores([]domain.Blocker{blocker(domain.PillarClarity, 40)}, 0)
	assert.Equal(t, 60, scores.Pillars.Clarity)

	// Two severity-40 blockers: penalty = 40 * 1.2 = 48, score = 52.
	scores = CalculateScores([]domain.Blocker{
		blocker(domain.PillarClarity, 40),
		blocker(domain.PillarClarity, 40),
	}, 0)
	assert.Equal(t, 52, scores.Pillars.Clarity)

	// Other pillars stay untouched at 100; total is the weighted sum.
	// 52*0.25 + 100*0.35 + 100*0.25 + 100*0.15 = 88.
	assert.Equal(t, 100, scores.Pillars.Specificity)
	assert.Equal(t, 88, scores.Total)
}

func TestCalculateScores_PenaltyCappedAt100(t *testing.T) {
	blockers := []domain.Blocker{
		blocker(domain.PillarProof, 90),
		blocker(domain.PillarProof, 90),
		blocker(domain.PillarProof, 90),
	}

	scores := CalculateScores(blockers, 0)
	assert.Equal(t, 0, scores.Pillars.Proof)
}

func TestCalculateScores_Idempotent(t *testing.T) {
	blockers := []domain.Blocker{
		blocker(domain.PillarClarity, 85),
		blocker(domain.PillarSpecificity, 70),
		blocker(domain.PillarProof, 60),
		blocker(domain.PillarAudience, 45),
	}

	first := CalculateScores(blockers, 4)
	second := CalculateScores(blockers, 4)
	require.Equal(t, first, second)
}

func TestCalculateScores_AddedBlockerEffect(t *testing.T) {
	base := []domain.Blocker{blocker(domain.PillarClarity, 50)}
	before := CalculateScores(base, 0)
	require.Equal(t, 50, before.Pillars.Clarity)

	// At or above the current average, another blocker always costs points:
	// the average holds or rises and the pile-on multiplier grows.
	for _, tt := range []struct {
		severity int
		want     int
	}{
		{severity: 50, want: 40},  // avg 50, penalty 50*1.2 = 60
		{severity: 80, want: 22},  // avg 65, penalty 65*1.2 = 78
		{severity: 100, want: 10}, // avg 75, penalty 75*1.2 = 90
	} {
		extended := append(append([]domain.Blocker{}, base...), blocker(domain.PillarClarity, tt.severity))
		assert.Equal(t, tt.want, CalculateScores(extended, 0).Pillars.Clarity,
			"severity %d", tt.severity)
	}

	// Below the average the mean dilutes: a severity-1 blocker pulls it to
	// 25.5, penalty 30.6, and the pillar climbs to 69. The formula is not
	// monotonic in blocker count.
	diluted := append(append([]domain.Blocker{}, base...), blocker(domain.PillarClarity, 1))
	assert.Equal(t, 69, CalculateScores(diluted, 0).Pillars.Clarity)
}

func TestCalculateScores_ManifestModifier(t *testing.T) {
	blockers := []domain.Blocker{blocker(domain.PillarClarity, 40)}

	neutral := CalculateScores(blockers, 0)
	boosted := CalculateScores(blockers, 5)
	penalized := CalculateScores(blockers, -5)

	assert.Equal(t, neutral.Total+5, boosted.Total)
	assert.Equal(t, neutral.Total-5, penalized.Total)
}

func TestCalculateScores_TotalClamped(t *testing.T) {
	assert.Equal(t, 100, CalculateScores(nil, 5).Total)

	heavy := []domain.Blocker{
		blocker(domain.PillarClarity, 100),
		blocker(domain.PillarSpecificity, 100),
		blocker(domain.PillarProof, 100),
		blocker(domain.PillarAudience, 100),
	}
	assert.Equal(t, 0, CalculateScores(heavy, -5).Total)
}
