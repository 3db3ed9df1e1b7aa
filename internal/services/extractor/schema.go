package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Keyword sets for case-insensitive substring matching of @type values.
var (
	orgTypeKeywords     = []string{"organization", "localbusiness"}
	productTypeKeywords = []string{"product", "softwareapplication"}
	reviewTypeKeywords  = []string{"review", "aggregaterating"}
	faqTypeKeywords     = []string{"faqpage", "question"}
	howToTypeKeywords   = []string{"howto"}
)

// extractSchema scans every JSON-LD script block on the unmodified document.
// Each block may hold a single object or an array of objects; entries nested in
// a @graph container are scanned too. Malformed JSON is skipped silently.
func extractSchema(doc *goquery.Document) SchemaSummary {
	summary := SchemaSummary{}
	seen := map[string]bool{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return
		}

		for _, obj := range asObjects(parsed) {
			recordSchemaObject(obj, &summary, seen)

			if graph, ok := obj["@graph"].([]any); ok {
				for _, entry := range asObjects(graph) {
					recordSchemaObject(entry, &summary, seen)
				}
			}
		}
	})

	return summary
}

// asObjects flattens a parsed JSON-LD value into its object entries.
func asObjects(parsed any) []map[string]any {
	switch v := parsed.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		var objs []map[string]any
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				objs = append(objs, obj)
			}
		}
		return objs
	}
	return nil
}

// recordSchemaObject records the object's @type values and updates flags.
func recordSchemaObject(obj map[string]any, summary *SchemaSummary, seen map[string]bool) {
	summary.Raw = append(summary.Raw, obj)

	for _, typeName := range typeValues(obj) {
		if !seen[typeName] {
			seen[typeName] = true
			summary.Types = append(summary.Types, typeName)
		}

		lower := strings.ToLower(typeName)
		summary.HasOrganization = summary.HasOrganization || matchesAny(lower, orgTypeKeywords)
		summary.HasProduct = summary.HasProduct || matchesAny(lower, productTypeKeywords)
		summary.HasReview = summary.HasReview || matchesAny(lower, reviewTypeKeywords)
		summary.HasFAQ = summary.HasFAQ || matchesAny(lower, faqTypeKeywords)
		summary.HasHowTo = summary.HasHowTo || matchesAny(lower, howToTypeKeywords)
	}
}

// typeValues reads @type as either a string or an array of strings.
func typeValues(obj map[string]any) []string {
	switch v := obj["@type"].(type) {
	case string:
		return []string{v}
	case []any:
		var types []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// mergeSchema unions two page-level summaries (used by the aggregator).
func mergeSchema(a, b SchemaSummary) SchemaSummary {
	merged := SchemaSummary{
		HasOrganization: a.HasOrganization || b.HasOrganization,
		HasProduct:      a.HasProduct || b.HasProduct,
		HasReview:       a.HasReview || b.HasReview,
		HasFAQ:          a.HasFAQ || b.HasFAQ,
		HasHowTo:        a.HasHowTo || b.HasHowTo,
	}

	seen := map[string]bool{}
	for _, t := range append(append([]string{}, a.Types...), b.Types...) {
		if !seen[t] {
			seen[t] = true
			merged.Types = append(merged.Types, t)
		}
	}
	merged.Raw = append(append([]map[string]any{}, a.Raw...), b.Raw...)

	return merged
}
