package extractor

// Extraction caps and length bounds.
const (
	maxParagraphs   = 30
	minParagraphLen = 30
	maxParagraphLen = 2000
	maxListGroups   = 20
	maxListItemLen  = 500
	minHeadingLen   = 2
	maxHeadingLen   = 300
	minSubheadLen   = 20
	maxSubheadLen   = 500
	maxFAQAnswerLen = 500
	maxDefinitions  = 10
	maxAudience     = 10
	maxClaims       = 15
	maxProofPoints  = 15
)

// Heading is one h1-h3 element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Hero is the page's primary headline pair.
type Hero struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
}

// FAQ is one mined question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Meta holds the document title and meta description.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SchemaSummary summarizes the JSON-LD blocks found on a page. Types is
// deduplicated; the boolean flags are true iff any raw entry's type matches the
// corresponding concept, including entries nested in a @graph container.
type SchemaSummary struct {
	Types           []string         `json:"types"`
	HasOrganization bool             `json:"has_organization"`
	HasProduct      bool             `json:"has_product"`
	HasReview       bool             `json:"has_review"`
	HasFAQ          bool             `json:"has_faq"`
	HasHowTo        bool             `json:"has_how_to"`
	Raw             []map[string]any `json:"-"`
}

// HasAny reports whether any structured data was found.
func (s SchemaSummary) HasAny() bool {
	return len(s.Types) > 0
}

// PageExtraction is the normalized content record for one crawled page.
// Created once by the extractor and immutable thereafter.
type PageExtraction struct {
	URL                  string        `json:"url"`
	PageType             string        `json:"page_type"`
	Meta                 Meta          `json:"meta"`
	Headings             []Heading     `json:"headings"`
	Hero                 Hero          `json:"hero"`
	Paragraphs           []string      `json:"paragraphs"`
	Lists                [][]string    `json:"lists"`
	DefinitionStatements []string      `json:"definition_statements"`
	AudienceStatements   []string      `json:"audience_statements"`
	Claims               []string      `json:"claims"`
	ProofPoints          []string      `json:"proof_points"`
	FAQs                 []FAQ         `json:"faqs"`
	Schema               SchemaSummary `json:"schema"`
}
