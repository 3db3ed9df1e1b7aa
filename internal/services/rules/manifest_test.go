package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

func manifestSite(title string) *extractor.SiteData {
	return extractor.Aggregate([]*extractor.PageExtraction{{
		URL:      "https://acme.example/",
		PageType: "homepage",
		Meta:     extractor.Meta{Title: title},
	}})
}

func TestAnalyzeManifest_Absent(t *testing.T) {
	site := manifestSite("Acme Analytics")

	for _, body := range []string{"", "   ", "\n\t"} {
		alignment := AnalyzeManifest(body, site, domain.Understanding{})
		assert.False(t, alignment.Present)
		assert.Nil(t, alignment.Aligned)
		assert.Equal(t, 0, alignment.Modifier)
	}
}

func TestAnalyzeManifest_FullyAligned(t *testing.T) {
	site := manifestSite("Acme Analytics | Usage insights")
	und := domain.Understanding{Category: "analytics platform"}

	manifest := "# Acme Analytics\n\n> Acme is an analytics platform for product teams.\n\n" +
		"## What we do\n\nWe turn raw usage events into dashboards.\n" +
		strings.Repeat("More detail about the product. ", 40)
	require.Less(t, len(manifest), 2000)

	alignment := AnalyzeManifest(manifest, site, und)

	require.True(t, alignment.Present)
	require.NotNil(t, alignment.Aligned)
	assert.True(t, *alignment.Aligned)
	assert.Equal(t, 5, alignment.Modifier)
	assert.Len(t, alignment.Notes, 4)
}

func TestAnalyzeManifest_Misaligned(t *testing.T) {
	site := manifestSite("Acme Analytics")
	und := domain.Understanding{Category: "analytics platform"}

	// Verbose, full of fluff, and about a different product entirely.
	manifest := strings.Repeat("Our revolutionary world-class offering changes everything. ", 100)
	require.Greater(t, len(manifest), 5000)

	alignment := AnalyzeManifest(manifest, site, und)

	require.True(t, alignment.Present)
	require.NotNil(t, alignment.Aligned)
	assert.False(t, *alignment.Aligned)
	assert.Equal(t, -5, alignment.Modifier)
}

func TestAnalyzeManifest_CompactBoundary(t *testing.T) {
	site := manifestSite("Acme Analytics")
	und := domain.Understanding{Category: "analytics platform"}

	pad := func(n int) string {
		head := "# acme analytics\n"
		return head + strings.Repeat("x", n-len(head))
	}

	under := AnalyzeManifest(pad(1999), site, und)
	assert.Contains(t, under.Notes, "compact and structured")

	// Compact means strictly under 2000 characters.
	at := AnalyzeManifest(pad(2000), site, und)
	assert.Contains(t, at.Notes, "lacks compact structure")
}

func TestAnalyzeManifest_ModifierBounds(t *testing.T) {
	site := manifestSite("Acme Analytics")
	und := domain.Understanding{Category: "analytics platform"}

	manifests := []string{
		"# short and clean",                          // structure + no fluff: 2 of 4
		"# acme, short and clean",                    // + title: 3 of 4
		"# acme analytics, short and clean",          // all 4
		"acme analytics with synergy " + strings.Repeat("x", 6000), // verbose + fluff: 2 of 4
		strings.Repeat("unrelated rambling without structure ", 100),
	}

	for _, m := range manifests {
		alignment := AnalyzeManifest(m, site, und)
		mod := alignment.Modifier
		ok := mod == -5 || (mod >= 3 && mod <= 5)
		assert.True(t, ok, "modifier %d out of bounds for manifest %q", mod, m[:min(len(m), 40)])
	}
}

func TestAnalyzeManifest_ExactModifiers(t *testing.T) {
	site := manifestSite("Acme Analytics")
	und := domain.Understanding{Category: "analytics platform"}

	tests := []struct {
		name     string
		manifest string
		want     int
	}{
		{
			name:     "two of four passes",
			manifest: "# compact, structured, no fluff, wrong product",
			want:     4, // round(3 + 2*0.5)
		},
		{
			name:     "three of four passes",
			manifest: "# acme compact structured no fluff",
			want:     5, // round(3 + 2*0.75) = round(4.5)
		},
		{
			name:     "no passes",
			manifest: "synergy-laden rambling with no structure or relevance",
			want:     -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alignment := AnalyzeManifest(tt.manifest, site, und)
			assert.Equal(t, tt.want, alignment.Modifier)
		})
	}
}
