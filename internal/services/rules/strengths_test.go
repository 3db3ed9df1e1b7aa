package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

func strengthCodes(strengths []domain.Strength) []string {
	codes := make([]string, 0, len(strengths))
	for _, s := range strengths {
		codes = append(codes, s.Code)
	}
	return codes
}

func TestStrengths_PresenceMirrors(t *testing.T) {
	aligned := true
	page := homepage(extractor.Hero{},
		`Customers reduce onboarding time by 60%. Read the case study. "Best tool we use" - Sam Ortiz, COO. Rated highly on Capterra.`,
	)
	page.DefinitionStatements = []string{"Acme is an onboarding platform for HR teams"}
	page.AudienceStatements = []string{"Built for HR teams at mid-market companies"}
	page.Schema = extractor.SchemaSummary{Types: []string{"Organization", "Product"}, HasOrganization: true, HasProduct: true}
	page.FAQs = []extractor.FAQ{
		{Question: "What is Acme?", Answer: "An onboarding platform."},
		{Question: "How much does it cost?", Answer: "Plans start at $49."},
		{Question: "Why switch?", Answer: "Faster onboarding."},
	}
	site := siteFrom(page)

	manifest := domain.ManifestAlignment{Present: true, Aligned: &aligned, Modifier: 5}
	strengths := Strengths(site, manifest)
	codes := strengthCodes(strengths)

	assert.Contains(t, codes, "STRENGTH_CLEAR_DEFINITION")
	assert.Contains(t, codes, "STRENGTH_QUANTIFIED_OUTCOMES")
	assert.Contains(t, codes, "STRENGTH_CASE_STUDIES")
	assert.Contains(t, codes, "STRENGTH_SCHEMA_PRESENT")
	assert.Contains(t, codes, "STRENGTH_AUDIENCE_CLARITY")
	assert.Contains(t, codes, "STRENGTH_TESTIMONIALS")
	assert.Contains(t, codes, "STRENGTH_THIRD_PARTY_VALIDATION")
	assert.Contains(t, codes, "STRENGTH_PRODUCT_SCHEMA")
	assert.Contains(t, codes, "STRENGTH_FAQ_CONTENT")
	assert.Contains(t, codes, "STRENGTH_LLMS_TXT")
}

func TestStrengths_SortedByImpact(t *testing.T) {
	page := homepage(extractor.Hero{}, "Customers reduce churn by 20%. Read the case study on G2.")
	page.DefinitionStatements = []string{"Acme is a retention platform"}
	site := siteFrom(page)

	strengths := Strengths(site, domain.ManifestAlignment{})
	require.NotEmpty(t, strengths)

	for i := 1; i < len(strengths); i++ {
		assert.GreaterOrEqual(t, strengths[i-1].Impact, strengths[i].Impact,
			"strengths must be non-increasing in impact")
	}
}

func TestStrengths_FAQThreshold(t *testing.T) {
	page := homepage(extractor.Hero{})
	page.FAQs = []extractor.FAQ{
		{Question: "What is it?", Answer: "A thing."},
		{Question: "How does it work?", Answer: "Well."},
	}

	codes := strengthCodes(Strengths(siteFrom(page), domain.ManifestAlignment{}))
	assert.NotContains(t, codes, "STRENGTH_FAQ_CONTENT")
}

func TestStrengths_MisalignedManifestNotCredited(t *testing.T) {
	misaligned := false
	site := siteFrom(homepage(extractor.Hero{}))

	codes := strengthCodes(Strengths(site, domain.ManifestAlignment{Present: true, Aligned: &misaligned, Modifier: -5}))
	assert.NotContains(t, codes, "STRENGTH_LLMS_TXT")
}

func TestStrengths_EmptySite(t *testing.T) {
	assert.Empty(t, Strengths(siteFrom(), domain.ManifestAlignment{}))
}
