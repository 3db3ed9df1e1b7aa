package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

// Impact constants for the positive-signal checks.
const (
	impClearDefinition    = 80
	impQuantifiedOutcomes = 75
	impCaseStudies        = 70
	impSchemaPresent      = 65
	impAudienceClarity    = 65
	impTestimonials       = 60
	impThirdParty         = 60
	impProblemFraming     = 55
	impProductSchema      = 50
	impFactDensity        = 50
	impFAQContent         = 45
	impManifestPresent    = 45
	impFreshness          = 40
)

// Strengths runs the positive mirrors of the blocker checks and returns
// findings sorted by impact descending (stable on ties).
func Strengths(site *extractor.SiteData, manifest domain.ManifestAlignment) []domain.Strength {
	var strengths []domain.Strength

	text := site.FullText()

	if len(site.AllDefinitions) > 0 {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_CLEAR_DEFINITION",
			Title:       "Clear definition statement",
			Description: "The site says plainly what the product is, giving AI systems a quotable answer.",
			Pillar:      domain.PillarClarity,
			Impact:      impClearDefinition,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  site.AllDefinitions[0],
				Location: "site-wide",
			}},
		})
	}

	if matchesAnyPattern(text, quantifiedOutcomePatterns) {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_QUANTIFIED_OUTCOMES",
			Title:       "Quantified outcomes",
			Description: "Benefit claims carry concrete numbers an AI can repeat verbatim.",
			Pillar:      domain.PillarSpecificity,
			Impact:      impQuantifiedOutcomes,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstMatchSnippet(text, quantifiedOutcomePatterns),
				Location: "site-wide",
			}},
		})
	}

	if caseStudyPattern.MatchString(text) {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_CASE_STUDIES",
			Title:       "Case-study content",
			Description: "Case-study material gives AI systems citable evidence the product delivers.",
			Pillar:      domain.PillarProof,
			Impact:      impCaseStudies,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  strings.TrimSpace(caseStudyPattern.FindString(text)),
				Location: "site-wide",
			}},
		})
	}

	if site.Schema.HasAny() {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_SCHEMA_PRESENT",
			Title:       "Structured data present",
			Description: fmt.Sprintf("JSON-LD markup (%s) describes the site machine-readably.", strings.Join(site.Schema.Types, ", ")),
			Pillar:      domain.PillarSpecificity,
			Impact:      impSchemaPresent,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  strings.Join(site.Schema.Types, ", "),
				Location: "site-wide",
			}},
		})
	}

	if len(site.AllAudienceStatements) > 0 {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_AUDIENCE_CLARITY",
			Title:       "Explicit audience",
			Description: "The site names who the product is for, so AI systems can match it to the right buyer.",
			Pillar:      domain.PillarAudience,
			Impact:      impAudienceClarity,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  site.AllAudienceStatements[0],
				Location: "site-wide",
			}},
		})
	}

	if matchesAnyPattern(text, attributedQuotePatterns) {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_TESTIMONIALS",
			Title:       "Attributed testimonials",
			Description: "Quotes are attributed to named people, making the social proof verifiable.",
			Pillar:      domain.PillarProof,
			Impact:      impTestimonials,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstMatchSnippet(text, attributedQuotePatterns),
				Location: "site-wide",
			}},
		})
	}

	if hasAuthorityMention(text) {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_THIRD_PARTY_VALIDATION",
			Title:       "Third-party validation",
			Description: "Independent platforms or press vouch for the product, backing the claims externally.",
			Pillar:      domain.PillarProof,
			Impact:      impThirdParty,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(text, 200),
				Location: "site-wide",
			}},
		})
	}

	if matchesAnyPattern(text, problemFramingPatterns) {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_PROBLEM_FRAMING",
			Title:       "Problem-led framing",
			Description: "The copy names the buyer's problem, matching how people actually phrase AI queries.",
			Pillar:      domain.PillarClarity,
			Impact:      impProblemFraming,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstMatchSnippet(text, problemFramingPatterns),
				Location: "site-wide",
			}},
		})
	}

	if site.Schema.HasProduct {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_PRODUCT_SCHEMA",
			Title:       "Product markup",
			Description: "Product structured data exposes the offer machine-readably.",
			Pillar:      domain.PillarSpecificity,
			Impact:      impProductSchema,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  strings.Join(site.Schema.Types, ", "),
				Location: "site-wide",
			}},
		})
	}

	if words := len(strings.Fields(text)); words > 200 {
		facts := len(hardFactPattern.FindAllString(text, -1))
		if density := float64(facts) / float64(words); density >= 0.01 {
			strengths = append(strengths, domain.Strength{
				Code:        "STRENGTH_FACT_DENSITY",
				Title:       "Fact-dense copy",
				Description: fmt.Sprintf("%d hard facts across %d words gives AI systems plenty of verifiable specifics.", facts, words),
				Pillar:      domain.PillarSpecificity,
				Impact:      impFactDensity,
				Evidence: []domain.Evidence{{
					URL:      site.HomepageURL(),
					Snippet:  hardFactPattern.FindString(text),
					Location: "site-wide",
				}},
			})
		}
	}

	if len(site.AllFAQs) >= 3 {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_FAQ_CONTENT",
			Title:       "FAQ content",
			Description: fmt.Sprintf("%d question/answer pairs map directly onto the questions buyers ask AI assistants.", len(site.AllFAQs)),
			Pillar:      domain.PillarClarity,
			Impact:      impFAQContent,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  site.AllFAQs[0].Question,
				Location: "faq",
			}},
		})
	}

	if manifest.Present && manifest.Aligned != nil && *manifest.Aligned {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_LLMS_TXT",
			Title:       "Aligned llms.txt",
			Description: "An llms.txt manifest exists and matches the site's positioning.",
			Pillar:      domain.PillarClarity,
			Impact:      impManifestPresent,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL() + "llms.txt",
				Snippet:  strings.Join(manifest.Notes, "; "),
				Location: "llms.txt",
			}},
		})
	}

	if pricingText := pricingBearingText(site); pricingText != "" && freshnessPattern.MatchString(pricingText) {
		strengths = append(strengths, domain.Strength{
			Code:        "STRENGTH_FRESHNESS",
			Title:       "Freshness markers",
			Description: "Dates or version numbers show the content is maintained.",
			Pillar:      domain.PillarSpecificity,
			Impact:      impFreshness,
			Evidence: []domain.Evidence{{
				URL:      pricingPageURL(site),
				Snippet:  strings.TrimSpace(freshnessPattern.FindString(pricingText)),
				Location: "pricing",
			}},
		})
	}

	sort.SliceStable(strengths, func(i, j int) bool {
		return strengths[i].Impact > strengths[j].Impact
	})
	return strengths
}
