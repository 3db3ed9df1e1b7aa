package extractor

import "strings"

// SiteData merges per-page extractions into one site-level view. Built once
// per analysis run; read-only input to every rule check.
type SiteData struct {
	Homepage              *PageExtraction
	AllHeadings           []Heading
	AllDefinitions        []string
	AllAudienceStatements []string
	AllClaims             []string
	AllProofPoints        []string
	AllFAQs               []FAQ
	PageTypes             map[string]*PageExtraction
	Schema                SchemaSummary
	pages                 []*PageExtraction
}

// Aggregate builds the site-level view from the full set of page extractions.
// Statement lists are deduplicated; FAQs are not. PageTypes keeps the first
// page seen per type.
func Aggregate(pages []*PageExtraction) *SiteData {
	site := &SiteData{
		PageTypes: make(map[string]*PageExtraction),
		pages:     pages,
	}

	defSeen := map[string]bool{}
	audSeen := map[string]bool{}
	claimSeen := map[string]bool{}
	proofSeen := map[string]bool{}

	for _, page := range pages {
		if page.PageType == "homepage" && site.Homepage == nil {
			site.Homepage = page
		}
		if _, ok := site.PageTypes[page.PageType]; !ok {
			site.PageTypes[page.PageType] = page
		}

		site.AllHeadings = append(site.AllHeadings, page.Headings...)
		site.AllFAQs = append(site.AllFAQs, page.FAQs...)

		site.AllDefinitions = appendDeduped(site.AllDefinitions, page.DefinitionStatements, defSeen)
		site.AllAudienceStatements = appendDeduped(site.AllAudienceStatements, page.AudienceStatements, audSeen)
		site.AllClaims = appendDeduped(site.AllClaims, page.Claims, claimSeen)
		site.AllProofPoints = appendDeduped(site.AllProofPoints, page.ProofPoints, proofSeen)

		site.Schema = mergeSchema(site.Schema, page.Schema)
	}

	return site
}

// Pages returns the underlying page extractions in crawl order.
func (s *SiteData) Pages() []*PageExtraction {
	return s.pages
}

// FullText joins every page's hero, headings, and paragraphs. Used by
// density-style checks that operate over all site text.
func (s *SiteData) FullText() string {
	var b strings.Builder

	for _, page := range s.pages {
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
	}

	return b.String()
}

// HeroText returns the homepage hero headline and subheadline joined.
func (s *SiteData) HeroText() string {
	if s.Homepage == nil {
		return ""
	}
	return strings.TrimSpace(s.Homepage.Hero.Headline + " " + s.Homepage.Hero.Subheadline)
}

// HomepageURL returns the homepage URL, or empty when no homepage was crawled.
func (s *SiteData) HomepageURL() string {
	if s.Homepage == nil {
		return ""
	}
	return s.Homepage.URL
}

// Title returns the homepage document title.
func (s *SiteData) Title() string {
	if s.Homepage == nil {
		return ""
	}
	return s.Homepage.Meta.Title
}

func appendDeduped(dst, src []string, seen map[string]bool) []string {
	for _, item := range src {
		if !seen[item] {
			seen[item] = true
			dst = append(dst, item)
		}
	}
	return dst
}
