package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

const schemaSystemPrompt = `You generate schema.org JSON-LD markup for business websites.
Given site content and a business summary, return ONLY a JSON-LD object (or @graph array) covering Organization and, where the content supports it, Product/SoftwareApplication and FAQPage.
Use only facts present in the provided content. Output must be a single valid JSON object.`

const llmsTxtSystemPrompt = `You write llms.txt manifests: the plain-markdown file AI systems read to understand a website.
Given site content and a business summary, write a concise llms.txt under 2000 characters with these sections:
# <site name>
> one-line summary
## What we do
## Who it's for
## Key facts
Use only facts present in the provided content. Return the markdown only, no fences.`

// GenerateSchemaMarkup produces schema.org JSON-LD for the site, falling back
// to a deterministic Organization template.
func (s *Service) GenerateSchemaMarkup(ctx context.Context, site *extractor.SiteData, und domain.Understanding) string {
	if s.client != nil {
		var markup map[string]any
		if _, err := s.client.CompleteJSON(ctx, schemaSystemPrompt, generatorDigest(site, und), &markup); err == nil && len(markup) > 0 {
			rendered, err := json.MarshalIndent(markup, "", "  ")
			if err == nil {
				return string(rendered)
			}
		} else if err != nil {
			s.logger.Warn("schema generation failed, using template", zap.Error(err))
		}
	}
	return FallbackSchemaMarkup(site, und)
}

// GenerateLLMSTxt produces an llms.txt body, falling back to a deterministic
// template.
func (s *Service) GenerateLLMSTxt(ctx context.Context, site *extractor.SiteData, und domain.Understanding) string {
	if s.client != nil {
		text, _, err := s.client.Complete(ctx, llmsTxtSystemPrompt, generatorDigest(site, und))
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			s.logger.Warn("llms.txt generation failed, using template", zap.Error(err))
		}
	}
	return FallbackLLMSTxt(site, und)
}

// FallbackSchemaMarkup renders a minimal Organization JSON-LD block from
// extraction signals alone.
func FallbackSchemaMarkup(site *extractor.SiteData, und domain.Understanding) string {
	org := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Organization",
		"name":        siteName(site),
		"url":         site.HomepageURL(),
		"description": und.OneLiner,
	}

	if len(site.AllFAQs) > 0 {
		var entities []map[string]any
		for i, faq := range site.AllFAQs {
			if i >= 10 {
				break
			}
			entities = append(entities, map[string]any{
				"@type": "Question",
				"name":  faq.Question,
				"acceptedAnswer": map[string]any{
					"@type": "Answer",
					"text":  faq.Answer,
				},
			})
		}
		graph := map[string]any{
			"@context": "https://schema.org",
			"@graph": []map[string]any{
				org,
				{"@type": "FAQPage", "mainEntity": entities},
			},
		}
		delete(org, "@context")
		rendered, _ := json.MarshalIndent(graph, "", "  ")
		return string(rendered)
	}

	rendered, _ := json.MarshalIndent(org, "", "  ")
	return string(rendered)
}

// FallbackLLMSTxt renders a template manifest from extraction signals alone.
func FallbackLLMSTxt(site *extractor.SiteData, und domain.Understanding) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n> %s\n\n", siteName(site), und.OneLiner)

	b.WriteString("## What we do\n\n")
	if len(site.AllDefinitions) > 0 {
		fmt.Fprintf(&b, "%s\n\n", site.AllDefinitions[0])
	} else {
		fmt.Fprintf(&b, "%s\n\n", und.OneLiner)
	}

	b.WriteString("## Who it's for\n\n")
	fmt.Fprintf(&b, "%s\n\n", und.Audience)

	if len(site.AllProofPoints) > 0 || len(und.UseCases) > 0 {
		b.WriteString("## Key facts\n\n")
		for i, point := range site.AllProofPoints {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", point)
		}
		for i, uc := range und.UseCases {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", uc)
		}
	}

	return strings.TrimSpace(b.String()) + "\n"
}

func siteName(site *extractor.SiteData) string {
	title := site.Title()
	// Drop the tagline half of "Name | Tagline" style titles.
	for _, sep := range []string{" | ", " - ", " – ", " — "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			break
		}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return site.HomepageURL()
	}
	return title
}

func generatorDigest(site *extractor.SiteData, und domain.Understanding) string {
	summary, _ := json.Marshal(und)
	return fmt.Sprintf("Business summary:\n%s\n\n%s", summary, siteDigest(site))
}
