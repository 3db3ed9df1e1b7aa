package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

const (
	manifestCompactLen = 2000
	manifestVerboseLen = 5000
)

var manifestFluffWords = []string{
	"synergy", "revolutionary", "game-changing", "world-class",
	"cutting-edge", "best-in-class", "industry-leading",
}

// AnalyzeManifest scores an llms.txt body against the crawled site and the
// LLM's understanding of it. Four sub-checks each pass or fail; half or more
// passing counts as aligned. The score modifier is round(3 + 2*ratio) when
// aligned, -5 when misaligned, 0 when absent.
func AnalyzeManifest(manifest string, site *extractor.SiteData, und domain.Understanding) domain.ManifestAlignment {
	if strings.TrimSpace(manifest) == "" {
		return domain.ManifestAlignment{Present: false, Aligned: nil, Modifier: 0}
	}

	lower := strings.ToLower(manifest)
	var notes []string
	passed := 0

	if word := firstWord(site.Title()); word != "" && strings.Contains(lower, word) {
		passed++
		notes = append(notes, "mentions the site title")
	} else {
		notes = append(notes, "does not mention the site title")
	}

	if word := firstWord(und.Category); word != "" && strings.Contains(lower, word) {
		passed++
		notes = append(notes, "matches the product category")
	} else {
		notes = append(notes, "does not match the product category")
	}

	switch {
	case len(manifest) < manifestCompactLen && strings.Contains(manifest, "#"):
		passed++
		notes = append(notes, "compact and structured")
	case len(manifest) > manifestVerboseLen:
		notes = append(notes, fmt.Sprintf("verbose at %d characters", len(manifest)))
	default:
		notes = append(notes, "lacks compact structure")
	}

	fluff := false
	for _, word := range manifestFluffWords {
		if strings.Contains(lower, word) {
			fluff = true
			notes = append(notes, fmt.Sprintf("contains marketing fluff (%q)", word))
			break
		}
	}
	if !fluff {
		passed++
		notes = append(notes, "free of marketing fluff")
	}

	ratio := float64(passed) / 4.0
	aligned := ratio >= 0.5

	modifier := -5
	if aligned {
		modifier = int(math.Round(3 + 2*ratio))
	}

	return domain.ManifestAlignment{
		Present:  true,
		Aligned:  &aligned,
		Modifier: modifier,
		Notes:    notes,
	}
}

// firstWord returns the lowercased first word of s when it is long enough to
// be a meaningful match token.
func firstWord(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 0 {
		return ""
	}
	if len(fields[0]) < 3 {
		return ""
	}
	return fields[0]
}
