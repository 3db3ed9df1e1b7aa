package extractor

import (
	"regexp"
	"strings"
)

// Each pattern family is an isolated matcher returning a capped, deduplicated,
// order-preserving list. Families are kept separate so each heuristic can be
// tested against literal fixture strings.

var definitionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b[\w][\w&.' -]{1,60}\s+is\s+(?:a|an|the)\s+[^.!?\n]{8,150}`),
	regexp.MustCompile(`(?i)\bwe\s+(?:are|provide|offer|build)\s+[^.!?\n]{8,150}`),
}

var audiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:built|designed|made|perfect)\s+for\s+[^.!?\n]{5,120}`),
	regexp.MustCompile(`(?i)\bfor\s+(?:teams|businesses|companies|developers|marketers|founders|startups|enterprises|agencies|freelancers)\b[^.!?\n]{0,100}`),
	regexp.MustCompile(`(?i)\bhelps?\s+[\w&.' -]{2,50}\s+(?:to|by|with)\s+[^.!?\n]{5,120}`),
}

var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:increase|boost|improve|reduce|save|cut|grow|double)s?\s+[^.!?\n]{5,120}`),
	regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?%\s+(?:faster|better|more|less|fewer|cheaper|higher|lower)\b[^.!?\n]{0,80}`),
}

var proofPointPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d[\d,.]*(?:\+|k|m)?\s+(?:customers|users|clients|companies|businesses|teams|developers|organizations)\b`),
	regexp.MustCompile(`(?i)\b(?:trusted|used|loved)\s+by\s+(?:over\s+)?\d[\d,.]*(?:\+|k|m)?[^.!?\n]{0,80}`),
}

// ExtractDefinitions finds "X is a/an/the ..." and "we are/provide/offer/build
// ..." statements, max 10.
func ExtractDefinitions(text string) []string {
	return matchAll(text, maxDefinitions, definitionPatterns)
}

// ExtractAudienceStatements finds "for/built for/designed for ..." and
// "helps X to/by/with ..." statements, max 10.
func ExtractAudienceStatements(text string) []string {
	return matchAll(text, maxAudience, audiencePatterns)
}

// ExtractClaims finds outcome-verb and "N% faster/better" claims, max 15.
func ExtractClaims(text string) []string {
	return matchAll(text, maxClaims, claimPatterns)
}

// ExtractProofPoints finds numeric customer/user mentions and "trusted by N"
// phrasing, max 15.
func ExtractProofPoints(text string) []string {
	return matchAll(text, maxProofPoints, proofPointPatterns)
}

// matchAll runs every pattern over the text, trims each match, deduplicates
// the combined result preserving source order, and truncates to the cap.
func matchAll(text string, limit int, patterns []*regexp.Regexp) []string {
	seen := map[string]bool{}
	var results []string

	for _, pattern := range patterns {
		for _, match := range pattern.FindAllString(text, -1) {
			trimmed := strings.TrimSpace(match)
			if trimmed == "" || seen[trimmed] {
				continue
			}
			seen[trimmed] = true
			results = append(results, trimmed)
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
