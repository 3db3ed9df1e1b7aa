package extractor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDefinitions(t *testing.T) {
	text := "Acme is a billing platform for accountants. We provide automated reconciliation for ledgers. The weather is nice today."

	got := ExtractDefinitions(text)
	assert.Len(t, got, 2)
	assert.Contains(t, got[0], "Acme is a billing platform")
	assert.Contains(t, got[1], "We provide automated reconciliation")
}

func TestExtractDefinitions_Cap(t *testing.T) {
	var parts []string
	for i := 0; i < 20; i++ {
		parts = append(parts, fmt.Sprintf("Widget%d is a tool for task number %d.", i, i))
	}

	got := ExtractDefinitions(strings.Join(parts, " "))
	assert.Len(t, got, 10)
}

func TestExtractAudienceStatements(t *testing.T) {
	text := "Built for finance teams at growing companies. Acme helps controllers to close the books faster."

	got := ExtractAudienceStatements(text)
	assert.NotEmpty(t, got)
	assert.Contains(t, got[0], "Built for finance teams")
}

func TestExtractClaims(t *testing.T) {
	text := "Reduce manual entry by half. Our customers report 30% faster closes every quarter."

	got := ExtractClaims(text)
	assert.Len(t, got, 2)
}

func TestExtractClaims_Cap(t *testing.T) {
	var parts []string
	for i := 0; i < 25; i++ {
		parts = append(parts, fmt.Sprintf("Reduce error class number %d across your workflow.", i))
	}

	got := ExtractClaims(strings.Join(parts, " "))
	assert.Len(t, got, 15)
}

func TestExtractProofPoints(t *testing.T) {
	text := "Trusted by over 2,000 growing businesses. More than 500 customers renewed last year."

	got := ExtractProofPoints(text)
	assert.Len(t, got, 2)
}

func TestMatchAll_Deduplicates(t *testing.T) {
	text := "Acme is a billing platform. Again: Acme is a billing platform."

	got := ExtractDefinitions(text)
	assert.Len(t, got, 1)
}

func TestPatterns_NoMatches(t *testing.T) {
	text := "Nothing here resembles any of the statement shapes."

	assert.Empty(t, ExtractDefinitions(text))
	assert.Empty(t, ExtractAudienceStatements(text))
	assert.Empty(t, ExtractClaims(text))
	assert.Empty(t, ExtractProofPoints(text))
}
