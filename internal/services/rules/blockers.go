package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

// Severity constants, hand-tuned.
const (
	sevNoDefinition            = 85
	sevNoAudienceStatement     = 80
	sevNoCaseStudies           = 75
	sevVagueHero               = 70
	sevNoQuantifiedOutcomes    = 70
	sevNoSchema                = 70
	sevNoClientExamples        = 65
	sevNoTestimonials          = 60
	sevSolutionOnly            = 60
	sevNoProductSchema         = 60
	sevLowFactDensity          = 55
	sevMissingAttributes       = 55
	sevNoThirdParty            = 55
	sevBrandedJargon           = 50
	sevUnsupportedSuperlative  = 50
	sevNoReviewSchema          = 50
	sevNoFAQSchema             = 45
	sevNoAudienceSegment       = 45
	sevManifestMisaligned      = 45
	sevNoProblemQuestions      = 40
	sevNoOrgSchema             = 40
	sevNoFreshness             = 40
	sevNoManifest              = 30
)

// Fixed word/phrase lists for the hero vagueness check.
var vagueWords = []string{
	"leverage", "synergy", "empower", "streamline", "revolutionize",
	"disrupt", "innovative", "cutting-edge", "next-generation", "seamless",
	"robust", "world-class", "holistic", "turnkey",
}

var vaguePhrases = []string{
	"take it to the next level", "best in class", "game changer",
	"one stop shop", "state of the art", "push the envelope",
}

var solutionOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwe\s+(?:provide|offer|deliver)\b`),
	regexp.MustCompile(`(?i)\bour\s+(?:platform|solution|product|suite)\b`),
	regexp.MustCompile(`(?i)\bleading\s+(?:provider|platform|solution)\b`),
}

var problemFramingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bstruggling\s+with\b`),
	regexp.MustCompile(`(?i)\btired\s+of\b`),
	regexp.MustCompile(`(?i)\bpain\s+points?\b`),
	regexp.MustCompile(`(?i)\bfrustrated\s+(?:by|with)\b`),
	regexp.MustCompile(`(?i)\bwasting\s+(?:time|money|hours)\b`),
	regexp.MustCompile(`(?i)\bstop\s+(?:losing|wasting|guessing)\b`),
	regexp.MustCompile(`(?i)\bsick\s+of\b`),
}

var questionFramingPattern = regexp.MustCompile(`(?i)\b(?:are\s+you|do\s+you|is\s+your|does\s+your|have\s+you)\b`)

var clientExamplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcase\s+stud(?:y|ies)\b`),
	regexp.MustCompile(`(?i)\b(?:customer|success|client)\s+stor(?:y|ies)\b`),
	regexp.MustCompile(`(?i)\b(?:customers|clients|companies|teams)\s+(?:like|such\s+as|including)\s+[A-Z]`),
}

var quantifiedOutcomePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:save|reduce|increase|boost|cut|grow|improve)\w*\b[^.!?\n]{0,80}?(?:\d+(?:\.\d+)?%|\$\d[\d,.]*)`),
	regexp.MustCompile(`(?i)(?:\d+(?:\.\d+)?%|\$\d[\d,.]*)[^.!?\n]{0,80}?\b(?:sav(?:ed|ings)|reduc(?:ed|tion)|increas(?:e|ed)|faster|growth)\b`),
}

var brandedFrameworkPattern = regexp.MustCompile(`\b(?:[A-Z][a-z]+){2,}(?:™|®)?\s+(?:Method|Methodology|Framework|System|Engine|Approach|Process)\b|\b[A-Z][\w-]*(?:™|®)`)

var caseStudyPattern = regexp.MustCompile(`(?i)\bcase\s+stud(?:y|ies)\b|\b(?:success|customer|client)\s+stor(?:y|ies)\b`)

var attributedQuotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"[^"]{10,300}"\s*[-–—]\s*[A-Z][a-z]+`),
	regexp.MustCompile(`“[^”]{10,300}”\s*[-–—]\s*[A-Z][a-z]+`),
}

// Fixed third-party authority platforms and domains.
var authorityMentions = []string{
	"g2", "g2.com", "capterra", "trustpilot", "gartner", "forrester",
	"product hunt", "producthunt", "techcrunch", "forbes", "y combinator",
	"ycombinator",
}

var seenOnPattern = regexp.MustCompile(`(?i)\b(?:as\s+seen\s+(?:on|in)|featured\s+(?:on|in))\b`)

var audienceSegmentKeywords = []string{
	"enterprise", "mid-market", "startup", "small business", "smb",
}

var hardFactPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?%|\$\d[\d,.]*|\bv\d+(?:\.\d+)+\b|\b\d+(?:\.\d+)?\s?(?:ms|gb|mb|tb|x|seconds?|minutes?|hours?|days?)\b|\b(?:SOC\s?2|GDPR|HIPAA|ISO\s?\d+|PCI(?:[ -]DSS)?|CCPA|FedRAMP)\b`)

var superlativePattern = regexp.MustCompile(`(?i)\b(?:the\s+)?(?:best|fastest|easiest|leading|#1|number\s+one)\b`)

var pricingIndicatorPattern = regexp.MustCompile(`(?i)\$\d[\d,.]*\s*(?:/|per\s+)?\s*(?:mo|month|user|seat|yr|year)?\b|\bper\s+month\b|\bfree\s+trial\b|\bpricing\b`)

var freshnessPattern = regexp.MustCompile(`(?i)\b20\d{2}\b|\bv\d+(?:\.\d+)+\b|\b(?:last\s+)?updated\b`)

// Product attribute keyword groups. Three or more missing triggers the
// missing-attributes blocker.
var productAttributes = []struct {
	name     string
	keywords []string
}{
	{"compatibility", []string{"compatible", "integrates", "integration", "works with"}},
	{"specifications", []string{"specification", "specs", "technical details", "requirements"}},
	{"materials", []string{"made of", "made from", "material", "built with"}},
	{"availability", []string{"available", "in stock", "availability", "get started today"}},
}

// Blockers runs the full check battery against the aggregated site view and
// returns findings sorted by severity descending (stable on ties).
func Blockers(site *extractor.SiteData, manifest domain.ManifestAlignment) []domain.Blocker {
	var blockers []domain.Blocker

	blockers = append(blockers, CheckLanguageClarity(site)...)
	blockers = append(blockers, CheckProblemFraming(site)...)
	blockers = append(blockers, CheckSpecificity(site)...)
	blockers = append(blockers, CheckProofPoints(site)...)
	blockers = append(blockers, CheckAudienceClarity(site)...)
	blockers = append(blockers, CheckSchemaMarkup(site)...)
	blockers = append(blockers, CheckFactualDensity(site)...)
	blockers = append(blockers, CheckProductDataSignals(site)...)
	blockers = append(blockers, CheckManifest(site, manifest)...)

	sort.SliceStable(blockers, func(i, j int) bool {
		return blockers[i].Severity > blockers[j].Severity
	})

	return blockers
}

// CheckLanguageClarity flags vague hero copy and the absence of any
// definition statement site-wide.
func CheckLanguageClarity(site *extractor.SiteData) []domain.Blocker {
	var out []domain.Blocker

	hero := site.HeroText()
	heroLower := strings.ToLower(hero)

	var matched []string
	for _, word := range vagueWords {
		if strings.Contains(heroLower, word) {
			matched = append(matched, word)
		}
	}
	for _, phrase := range vaguePhrases {
		if strings.Contains(heroLower, phrase) {
			matched = append(matched, phrase)
		}
	}

	if len(matched) > 0 {
		out = append(out, domain.Blocker{
			Code:        "CLARITY_VAGUE_HERO",
			Title:       "Vague buzzwords in the hero",
			Description: fmt.Sprintf("The hero copy relies on empty buzzwords (%s) instead of saying what the product does.", strings.Join(matched, ", ")),
			Pillar:      domain.PillarClarity,
			Severity:    sevVagueHero,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  hero,
				Location: "hero",
			}},
			FixStrategy: "Rewrite the hero as a plain statement of what the product is and who it is for.",
		})
	}

	if len(site.AllDefinitions) == 0 {
		out = append(out, domain.Blocker{
			Code:        "CLARITY_NO_DEFINITION",
			Title:       "No definition statement anywhere",
			Description: "No page states what the product actually is. An AI system has nothing to quote when asked what you do.",
			Pillar:      domain.PillarClarity,
			Severity:    sevNoDefinition,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(hero, 200),
				Location: "site-wide",
			}},
			FixStrategy: "Add a one-sentence definition in the form \"[Product] is a [category] that [outcome]\" near the top of the homepage.",
		})
	}

	return out
}

// CheckProblemFraming flags solution-only copy with no problem framing, and
// the absence of question-style phrasing when problem framing is also missing.
func CheckProblemFraming(site *extractor.SiteData) []domain.Blocker {
	var out []domain.Blocker

	text := site.FullText()

	hasProblem := matchesAnyPattern(text, problemFramingPatterns)
	hasSolutionOnly := matchesAnyPattern(text, solutionOnlyPatterns)

	if hasSolutionOnly && !hasProblem {
		out = append(out, domain.Blocker{
			Code:        "CLARITY_SOLUTION_ONLY",
			Title:       "Solution-only framing",
			Description: "The copy talks about the platform but never names the problem it solves, so an AI cannot match it to a buyer's pain.",
			Pillar:      domain.PillarClarity,
			Severity:    sevSolutionOnly,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstMatchSnippet(text, solutionOnlyPatterns),
				Location: "site-wide",
			}},
			FixStrategy: "Open with the problem your buyers recognize, then present the product as the answer.",
		})
	}

	if !hasProblem && !questionFramingPattern.MatchString(text) && !strings.Contains(text, "?") {
		out = append(out, domain.Blocker{
			Code:        "CLARITY_NO_QUESTIONS",
			Title:       "No question-style phrasing",
			Description: "The site never asks the questions buyers type into AI assistants, so it misses the phrasing those queries use.",
			Pillar:      domain.PillarClarity,
			Severity:    sevNoProblemQuestions,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(text, 200),
				Location: "site-wide",
			}},
			FixStrategy: "Add question-led sections (\"Struggling with X?\") that mirror how buyers describe the problem.",
		})
	}

	return out
}

// CheckSpecificity flags missing client examples, missing quantified
// outcomes, and unexplained branded-framework jargon.
func CheckSpecificity(site *extractor.SiteData) []domain.Blocker {
	var out []domain.Blocker

	text := site.FullText()

	if !matchesAnyPattern(text, clientExamplePatterns) {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_NO_CLIENT_EXAMPLES",
			Title:       "No named client examples",
			Description: "No page names a customer or references a case study, so claims stay generic.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoClientExamples,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(text, 200),
				Location: "site-wide",
			}},
			FixStrategy: "Name real customers (with permission) and link to at least one written case study.",
		})
	}

	if !matchesAnyPattern(text, quantifiedOutcomePatterns) {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_NO_QUANTIFIED_OUTCOMES",
			Title:       "No quantified outcomes",
			Description: "Benefit claims carry no numbers. \"Saves time\" is unverifiable; \"saves 6 hours a week\" is quotable.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoQuantifiedOutcomes,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(text, 200),
				Location: "site-wide",
			}},
			FixStrategy: "Attach a concrete percentage or dollar figure to each headline benefit.",
		})
	}

	if match := brandedFrameworkPattern.FindString(text); match != "" {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_BRANDED_JARGON",
			Title:       "Branded framework without plain language",
			Description: fmt.Sprintf("Proprietary terminology (%q) is used without a plain-language explanation, so AI systems cannot map it to a known concept.", strings.TrimSpace(match)),
			Pillar:      domain.PillarSpecificity,
			Severity:    sevBrandedJargon,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  strings.TrimSpace(match),
				Location: "site-wide",
			}},
			FixStrategy: "Follow every branded term with a one-line plain-language description of what it is.",
		})
	}

	return out
}

// CheckProofPoints flags missing case-study language, missing attributed
// quotes, and missing third-party authority mentions.
func CheckProofPoints(site *extractor.SiteData) []domain.Blocker {
	var out []domain.Blocker

	text := site.FullText()

	if !caseStudyPattern.MatchString(text) {
		out = append(out, domain.Blocker{
			Code:        "PROOF_NO_CASE_STUDIES",
			Title:       "No case studies",
			Description: "There is no case-study content for an AI system to cite as evidence the product works.",
			Pillar:      domain.PillarProof,
			Severity:    sevNoCaseStudies,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(text, 200),
				Location: "site-wide",
			}},
			FixStrategy: "Publish at least one case study with a named customer, the starting problem, and a measured result.",
		})
	}

	if !matchesAnyPattern(text, attributedQuotePatterns) {
		out = append(out, domain.Blocker{
			Code:        "PROOF_NO_TESTIMONIALS",
			Title:       "No attributed testimonials",
			Description: "No quote is attributed to a named person, so social proof cannot be verified.",
			Pillar:      domain.PillarProof,
			Severity:    sevNoTestimonials,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(text, 200),
				Location: "site-wide",
			}},
			FixStrategy: "Add testimonials in the form \"quote\" - Name, Role, Company.",
		})
	}

	if !hasAuthorityMention(text) {
		out = append(out, domain.Blocker{
			Code:        "PROOF_NO_THIRD_PARTY",
			Title:       "No third-party validation",
			Description: "No review platform, analyst, or press mention appears anywhere, leaving all claims self-asserted.",
			Pillar:      domain.PillarProof,
			Severity:    sevNoThirdParty,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(text, 200),
				Location: "site-wide",
			}},
			FixStrategy: "Collect reviews on G2 or Capterra and surface the rating on your site.",
		})
	}

	return out
}

// CheckAudienceClarity flags missing audience statements and missing
// company-size segmentation keywords.
func CheckAudienceClarity(site *extractor.SiteData) []domain.Blocker {
	var out []domain.Blocker

	if len(site.AllAudienceStatements) == 0 {
		out = append(out, domain.Blocker{
			Code:        "AUDIENCE_NO_STATEMENT",
			Title:       "No audience statement",
			Description: "No page says who the product is for, so an AI cannot match it to a specific buyer.",
			Pillar:      domain.PillarAudience,
			Severity:    sevNoAudienceStatement,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  site.HeroText(),
				Location: "site-wide",
			}},
			FixStrategy: "Add an explicit \"built for [role] at [company type]\" statement to the homepage.",
		})
	}

	textLower := strings.ToLower(site.FullText())
	hasSegment := false
	for _, kw := range audienceSegmentKeywords {
		if strings.Contains(textLower, kw) {
			hasSegment = true
			break
		}
	}

	if !hasSegment {
		out = append(out, domain.Blocker{
			Code:        "AUDIENCE_NO_SEGMENT",
			Title:       "No company-size segmentation",
			Description: "The copy never says whether the product targets startups, SMBs, mid-market, or enterprise.",
			Pillar:      domain.PillarAudience,
			Severity:    sevNoAudienceSegment,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  firstN(site.FullText(), 200),
				Location: "site-wide",
			}},
			FixStrategy: "Name the company segment you serve best, even at the cost of excluding others.",
		})
	}

	return out
}

// CheckSchemaMarkup flags structured-data gaps. When no structured data
// exists at all, the single no-schema finding is returned and every
// finer-grained sub-check is skipped. This is the one inter-check
// short-circuit in the battery.
func CheckSchemaMarkup(site *extractor.SiteData) []domain.Blocker {
	if !site.Schema.HasAny() {
		return []domain.Blocker{{
			Code:        "SPECIFICITY_NO_SCHEMA",
			Title:       "No structured data",
			Description: "No page carries schema.org JSON-LD markup, the most direct machine-readable signal of what you are.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoSchema,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  "No application/ld+json blocks found on any crawled page.",
				Location: "site-wide",
			}},
			FixStrategy: "Add Organization and Product JSON-LD blocks to the homepage head.",
		}}
	}

	var out []domain.Blocker

	if !site.Schema.HasOrganization {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_NO_ORG_SCHEMA",
			Title:       "Missing Organization markup",
			Description: "Structured data exists but no Organization entity describes the company itself.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoOrgSchema,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  fmt.Sprintf("Schema types found: %s", strings.Join(site.Schema.Types, ", ")),
				Location: "site-wide",
			}},
			FixStrategy: "Add an Organization JSON-LD block with name, url, logo, and sameAs links.",
		})
	}

	if !site.Schema.HasReview && len(site.AllProofPoints) > 0 {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_NO_REVIEW_SCHEMA",
			Title:       "Proof points without Review markup",
			Description: "The copy cites customer numbers but no Review or AggregateRating markup backs them machine-readably.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoReviewSchema,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  site.AllProofPoints[0],
				Location: "site-wide",
			}},
			FixStrategy: "Add AggregateRating markup sourced from your review platform.",
		})
	}

	if !site.Schema.HasFAQ && len(site.AllFAQs) > 0 {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_NO_FAQ_SCHEMA",
			Title:       "FAQ content without FAQPage markup",
			Description: "FAQ content exists in the copy but is not marked up as FAQPage, so it cannot be lifted directly into answers.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoFAQSchema,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  site.AllFAQs[0].Question,
				Location: "faq",
			}},
			FixStrategy: "Wrap existing FAQ sections in FAQPage JSON-LD.",
		})
	}

	return out
}

// CheckFactualDensity computes the hard-fact token ratio over all site text
// and flags low density plus unsubstantiated superlatives.
func CheckFactualDensity(site *extractor.SiteData) []domain.Blocker {
	var out []domain.Blocker

	text := site.FullText()
	words := len(strings.Fields(text))
	facts := len(hardFactPattern.FindAllString(text, -1))

	if words > 200 {
		density := float64(facts) / float64(words)
		if density < 0.01 {
			out = append(out, domain.Blocker{
				Code:        "SPECIFICITY_LOW_FACT_DENSITY",
				Title:       "Low factual density",
				Description: fmt.Sprintf("Only %d hard facts across %d words (%.1f%%). AI systems prefer content with verifiable specifics.", facts, words, density*100),
				Pillar:      domain.PillarSpecificity,
				Severity:    sevLowFactDensity,
				Evidence: []domain.Evidence{{
					URL:      site.HomepageURL(),
					Snippet:  firstN(text, 200),
					Location: "site-wide",
				}},
				FixStrategy: "Replace adjectives with numbers: prices, limits, benchmarks, compliance certifications.",
			})
		}
	}

	if superlative := superlativePattern.FindString(text); superlative != "" && facts == 0 {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_UNSUPPORTED_SUPERLATIVES",
			Title:       "Superlatives without supporting data",
			Description: fmt.Sprintf("Comparative claims like %q appear with no data anywhere to back them.", strings.TrimSpace(superlative)),
			Pillar:      domain.PillarSpecificity,
			Severity:    sevUnsupportedSuperlative,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  strings.TrimSpace(superlative),
				Location: "site-wide",
			}},
			FixStrategy: "Either cite the benchmark behind each superlative or drop it.",
		})
	}

	return out
}

// CheckProductDataSignals applies only to sites with pricing indicators:
// missing Product markup, missing attribute keyword groups (3+), and missing
// freshness markers in pricing-bearing content.
func CheckProductDataSignals(site *extractor.SiteData) []domain.Blocker {
	pricingText := pricingBearingText(site)
	if pricingText == "" {
		return nil
	}

	var out []domain.Blocker
	pricingURL := pricingPageURL(site)

	if !site.Schema.HasProduct {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_NO_PRODUCT_SCHEMA",
			Title:       "Pricing without Product markup",
			Description: "The site sells something but carries no Product or SoftwareApplication structured data.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoProductSchema,
			Evidence: []domain.Evidence{{
				URL:      pricingURL,
				Snippet:  firstMatchSnippet(pricingText, []*regexp.Regexp{pricingIndicatorPattern}),
				Location: "pricing",
			}},
			FixStrategy: "Add Product JSON-LD with offers, price, and priceCurrency.",
		})
	}

	lower := strings.ToLower(pricingText)
	var missing []string
	for _, attr := range productAttributes {
		found := false
		for _, kw := range attr.keywords {
			if strings.Contains(lower, kw) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, attr.name)
		}
	}

	if len(missing) >= 3 {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_MISSING_ATTRIBUTES",
			Title:       "Missing product attributes",
			Description: fmt.Sprintf("Buyers and AI systems look for %s; none of these appear in the pricing content.", strings.Join(missing, ", ")),
			Pillar:      domain.PillarSpecificity,
			Severity:    sevMissingAttributes,
			Evidence: []domain.Evidence{{
				URL:      pricingURL,
				Snippet:  firstN(pricingText, 200),
				Location: "pricing",
			}},
			FixStrategy: "Add a plain attribute table covering " + strings.Join(missing, ", ") + ".",
		})
	}

	if !freshnessPattern.MatchString(pricingText) {
		out = append(out, domain.Blocker{
			Code:        "SPECIFICITY_NO_FRESHNESS",
			Title:       "No freshness markers",
			Description: "Pricing content carries no dates or version numbers, so an AI cannot tell whether it is current.",
			Pillar:      domain.PillarSpecificity,
			Severity:    sevNoFreshness,
			Evidence: []domain.Evidence{{
				URL:      pricingURL,
				Snippet:  firstN(pricingText, 200),
				Location: "pricing",
			}},
			FixStrategy: "Add a visible \"last updated\" date or version number near the pricing table.",
		})
	}

	return out
}

// CheckManifest flags llms.txt absence or computed misalignment.
func CheckManifest(site *extractor.SiteData, manifest domain.ManifestAlignment) []domain.Blocker {
	if !manifest.Present {
		return []domain.Blocker{{
			Code:        "CLARITY_NO_LLMS_TXT",
			Title:       "No llms.txt manifest",
			Description: "The site publishes no llms.txt, the one file written specifically for AI systems.",
			Pillar:      domain.PillarClarity,
			Severity:    sevNoManifest,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL(),
				Snippet:  "GET /llms.txt returned no content.",
				Location: "llms.txt",
			}},
			FixStrategy: "Publish a concise llms.txt at the site root describing what the product is, who it serves, and how it is priced.",
		}}
	}

	if manifest.Aligned != nil && !*manifest.Aligned {
		return []domain.Blocker{{
			Code:        "CLARITY_LLMS_MISALIGNED",
			Title:       "llms.txt out of step with the site",
			Description: fmt.Sprintf("The manifest exists but fails alignment checks: %s.", strings.Join(manifest.Notes, "; ")),
			Pillar:      domain.PillarClarity,
			Severity:    sevManifestMisaligned,
			Evidence: []domain.Evidence{{
				URL:      site.HomepageURL() + "llms.txt",
				Snippet:  strings.Join(manifest.Notes, "; "),
				Location: "llms.txt",
			}},
			FixStrategy: "Rewrite llms.txt to match the site's actual positioning, keep it under 2000 characters, and drop the marketing language.",
		}}
	}

	return nil
}

// Helpers shared with the strength checks.

func matchesAnyPattern(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func firstMatchSnippet(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if match := p.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return firstN(text, 120)
}

func hasAuthorityMention(text string) bool {
	lower := strings.ToLower(text)
	for _, mention := range authorityMentions {
		if strings.Contains(lower, mention) {
			return true
		}
	}
	return seenOnPattern.MatchString(text)
}

// firstN caps s at n bytes, backing off so a multi-byte rune is never split.
func firstN(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// pricingBearingText returns text from the pricing page when one was crawled,
// or all site text when pricing indicators appear anywhere, else empty.
func pricingBearingText(site *extractor.SiteData) string {
	if page, ok := site.PageTypes["pricing"]; ok {
		return pageText(page)
	}
	text := site.FullText()
	if pricingIndicatorPattern.MatchString(text) {
		return text
	}
	return ""
}

func pricingPageURL(site *extractor.SiteData) string {
	if page, ok := site.PageTypes["pricing"]; ok {
		return page.URL
	}
	return site.HomepageURL()
}

func pageText(page *extractor.PageExtraction) string {
	var b strings.Builder
	b.WriteString(page.Hero.Headline)
	b.WriteString(" ")
	b.WriteString(page.Hero.Subheadline)
	b.WriteString(" ")
	for _, h := range page.Headings {
		b.WriteString(h.Text)
		b.WriteString(" ")
	}
	for _, p := range page.Paragraphs {
		b.WriteString(p)
		b.WriteString(" ")
	}
	for _, list := range page.Lists {
		b.WriteString(strings.Join(list, " "))
		b.WriteString(" ")
	}
	return b.String()
}
