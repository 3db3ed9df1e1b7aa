package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

// enrichBatchSize is how many top-severity findings get a rewritten
// description and fix strategy. The rest keep their rule-engine text.
const enrichBatchSize = 5

const blockerSystemPrompt = `You write specific, actionable advice for fixing website content problems.
For each finding you receive, rewrite its description to reference the actual site content, and write a concrete fix strategy the site owner could execute this week.
Return a JSON array where each element has this shape:
{"code": "the finding's code, unchanged", "description": "rewritten description", "evidence_snippet": "the most relevant quote from the site content", "fix_strategy": "concrete steps"}
Keep every code exactly as given. Do not add or remove findings.`

type enrichedBlocker struct {
	Code            string `json:"code"`
	Description     string `json:"description"`
	EvidenceSnippet string `json:"evidence_snippet"`
	FixStrategy     string `json:"fix_strategy"`
}

// EnrichBlockers rewrites the top findings by severity in one batched call.
// Responses merge strictly by code; unknown codes are ignored and any failure
// leaves every finding untouched.
func (s *Service) EnrichBlockers(ctx context.Context, blockers []domain.Blocker, site *extractor.SiteData) []domain.Blocker {
	if s.client == nil || len(blockers) == 0 {
		return blockers
	}

	batch := blockers
	if len(batch) > enrichBatchSize {
		batch = batch[:enrichBatchSize]
	}

	var enriched []enrichedBlocker
	if _, err := s.client.CompleteJSON(ctx, blockerSystemPrompt, blockerDigest(batch, site), &enriched); err != nil {
		s.logger.Warn("blocker enrichment failed, keeping rule-engine text", zap.Error(err))
		return blockers
	}

	byCode := make(map[string]enrichedBlocker, len(enriched))
	for _, e := range enriched {
		byCode[e.Code] = e
	}

	out := make([]domain.Blocker, len(blockers))
	copy(out, blockers)
	for i := range out {
		e, ok := byCode[out[i].Code]
		if !ok {
			continue
		}
		if desc := strings.TrimSpace(e.Description); desc != "" {
			out[i].Description = desc
		}
		if fix := strings.TrimSpace(e.FixStrategy); fix != "" {
			out[i].FixStrategy = fix
		}
		if snippet := strings.TrimSpace(e.EvidenceSnippet); snippet != "" && len(out[i].Evidence) > 0 {
			// The copied slice still shares Evidence backing arrays with the
			// caller's blockers, so clone before writing the snippet.
			ev := make([]domain.Evidence, len(out[i].Evidence))
			copy(ev, out[i].Evidence)
			ev[0].Snippet = snippet
			out[i].Evidence = ev
		}
	}

	return out
}

func blockerDigest(batch []domain.Blocker, site *extractor.SiteData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Site: %s\nHero: %s\n\nFindings:\n", site.HomepageURL(), site.HeroText())

	payload, _ := json.Marshal(batch)
	b.Write(payload)

	b.WriteString("\n\nSite content excerpt:\n")
	text := site.FullText()
	if n := 4000; len(text) > n {
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	b.WriteString(text)

	return b.String()
}
