package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

const understandingSystemPrompt = `You analyze B2B websites and summarize what the business does.
Given extracted site content, return a JSON object with this exact shape:
{
  "one_liner": "what the product is, in one plain sentence",
  "category": "the product category in a few words",
  "audience": "who the product is for",
  "use_cases": ["up to five concrete use cases"],
  "confusions": ["things a reader could misunderstand from this copy"],
  "missing_for_confidence": ["information the site omits that you would need to recommend it"],
  "confidence": {"score": 0-100, "level": "low|medium|high", "reason": "one sentence"}
}
Base everything strictly on the provided content. Do not invent facts.`

// Understand synthesizes a structured business summary from the aggregated
// site content. Any failure yields the deterministic fallback.
func (s *Service) Understand(ctx context.Context, site *extractor.SiteData) domain.Understanding {
	if s.client == nil {
		return FallbackUnderstanding(site)
	}

	var und domain.Understanding
	if _, err := s.client.CompleteJSON(ctx, understandingSystemPrompt, siteDigest(site), &und); err != nil {
		s.logger.Warn("understanding synthesis failed, using fallback", zap.Error(err))
		return FallbackUnderstanding(site)
	}

	if strings.TrimSpace(und.OneLiner) == "" {
		s.logger.Warn("understanding synthesis returned empty one-liner, using fallback")
		return FallbackUnderstanding(site)
	}

	return und
}

// FallbackUnderstanding builds an Understanding from extraction signals alone.
// It is deliberately conservative: low confidence, and the gaps it reports are
// exactly the signal families that came back empty.
func FallbackUnderstanding(site *extractor.SiteData) domain.Understanding {
	und := domain.Understanding{
		Confidence: domain.ConfidenceVerdict{
			Score:  30,
			Level:  "low",
			Reason: "Summary derived from page structure without language-model analysis.",
		},
	}

	switch {
	case len(site.AllDefinitions) > 0:
		und.OneLiner = site.AllDefinitions[0]
	case site.HeroText() != "":
		und.OneLiner = site.HeroText()
	default:
		und.OneLiner = site.Title()
	}

	und.Category = guessCategory(site)

	if len(site.AllAudienceStatements) > 0 {
		und.Audience = site.AllAudienceStatements[0]
	} else {
		und.Audience = "Unclear from the site content"
		und.MissingForConfidence = append(und.MissingForConfidence, "an explicit statement of who the product is for")
	}

	for i, claim := range site.AllClaims {
		if i >= 5 {
			break
		}
		und.UseCases = append(und.UseCases, claim)
	}

	if len(site.AllDefinitions) == 0 {
		und.MissingForConfidence = append(und.MissingForConfidence, "a plain definition of what the product is")
		und.Confusions = append(und.Confusions, "The site never states directly what the product does.")
	}
	if len(site.AllProofPoints) == 0 {
		und.MissingForConfidence = append(und.MissingForConfidence, "customer numbers or other proof points")
	}

	return und
}

var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"platform", "software platform"},
	{"software", "software product"},
	{"app", "application"},
	{"agency", "agency services"},
	{"consulting", "consulting services"},
	{"service", "service business"},
	{"tool", "software tool"},
	{"api", "developer API"},
}

func guessCategory(site *extractor.SiteData) string {
	text := strings.ToLower(site.HeroText() + " " + site.Title())
	for _, ck := range categoryKeywords {
		if strings.Contains(text, ck.keyword) {
			return ck.category
		}
	}
	return "business website"
}

// siteDigest renders the aggregated extraction as a compact prompt body.
func siteDigest(site *extractor.SiteData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Site: %s\nTitle: %s\nHero: %s\n", site.HomepageURL(), site.Title(), site.HeroText())

	writeSection := func(name string, items []string, limit int) {
		if len(items) == 0 {
			return
		}
		if len(items) > limit {
			items = items[:limit]
		}
		fmt.Fprintf(&b, "\n%s:\n", name)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	var headings []string
	for _, h := range site.AllHeadings {
		headings = append(headings, h.Text)
	}
	writeSection("Headings", headings, 20)
	writeSection("Definition statements", site.AllDefinitions, 10)
	writeSection("Audience statements", site.AllAudienceStatements, 10)
	writeSection("Claims", site.AllClaims, 15)
	writeSection("Proof points", site.AllProofPoints, 15)

	if len(site.AllFAQs) > 0 {
		b.WriteString("\nFAQs:\n")
		for i, faq := range site.AllFAQs {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", faq.Question, faq.Answer)
		}
	}

	if site.Schema.HasAny() {
		fmt.Fprintf(&b, "\nStructured data types: %s\n", strings.Join(site.Schema.Types, ", "))
	}

	return b.String()
}
