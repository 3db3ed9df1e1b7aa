package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pillar is one of the four fixed scoring categories.
type Pillar string

const (
	PillarClarity     Pillar = "clarity"
	PillarSpecificity Pillar = "specificity"
	PillarProof       Pillar = "proof"
	PillarAudience    Pillar = "audience"
)

// PillarWeights are the fixed composite weights. They sum to 100.
var PillarWeights = map[Pillar]int{
	PillarClarity:     25,
	PillarSpecificity: 35,
	PillarProof:       25,
	PillarAudience:    15,
}

// Pillars lists all pillars in weight order.
func Pillars() []Pillar {
	return []Pillar{PillarClarity, PillarSpecificity, PillarProof, PillarAudience}
}

// Evidence substantiates a finding with a concrete excerpt from the site.
type Evidence struct {
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Location string `json:"location"`
}

// Blocker is a detected content deficiency that would reduce an AI system's
// confidence in recommending the site. Code is stable and globally unique per
// check; it is the merge key for enrichment.
type Blocker struct {
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Pillar      Pillar     `json:"pillar"`
	Severity    int        `json:"severity"` // 0-100
	Evidence    []Evidence `json:"evidence"`
	FixStrategy string     `json:"fix_strategy,omitempty"`
}

// Strength is a detected positive content signal.
type Strength struct {
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Pillar      Pillar     `json:"pillar"`
	Impact      int        `json:"impact"` // 0-100
	Evidence    []Evidence `json:"evidence"`
}

// PillarScores holds the four sub-scores.
type PillarScores struct {
	Clarity     int `json:"clarity"`
	Specificity int `json:"specificity"`
	Proof       int `json:"proof"`
	Audience    int `json:"audience"`
}

// Get returns the score for a pillar.
func (p PillarScores) Get(pillar Pillar) int {
	switch pillar {
	case PillarClarity:
		return p.Clarity
	case PillarSpecificity:
		return p.Specificity
	case PillarProof:
		return p.Proof
	case PillarAudience:
		return p.Audience
	}
	return 0
}

// Scores is the derived composite result. Recomputed each run, never stored as
// mutable state.
type Scores struct {
	Total   int          `json:"total"` // 0-100
	Pillars PillarScores `json:"pillars"`
}

// ConfidenceVerdict summarizes the LLM's own confidence in its understanding.
type ConfidenceVerdict struct {
	Score  int    `json:"score"`
	Level  string `json:"level"` // "low", "medium", "high"
	Reason string `json:"reason"`
}

// Understanding is the structured business summary produced once per run by the
// enrichment step or its deterministic fallback.
type Understanding struct {
	OneLiner             string            `json:"one_liner"`
	Category             string            `json:"category"`
	Audience             string            `json:"audience"`
	UseCases             []string          `json:"use_cases"`
	Confusions           []string          `json:"confusions"`
	MissingForConfidence []string          `json:"missing_for_confidence"`
	Confidence           ConfidenceVerdict `json:"confidence"`
}

// ManifestAlignment is the llms.txt analysis verdict. Aligned is nil iff the
// manifest is absent. Modifier is 0 when absent, 3..5 when aligned, -5 when
// present but misaligned.
type ManifestAlignment struct {
	Present  bool     `json:"present"`
	Aligned  *bool    `json:"aligned"`
	Modifier int      `json:"modifier"`
	Notes    []string `json:"notes"`
}

// AnalysisResult is the terminal payload of one analysis run.
type AnalysisResult struct {
	Success        bool              `json:"success"`
	URL            string            `json:"url"`
	AnalyzedAt     time.Time         `json:"analyzed_at"`
	ElapsedSeconds float64           `json:"elapsed_seconds"`
	PagesAnalyzed  int               `json:"pages_analyzed"`
	Scores         Scores            `json:"scores"`
	Understanding  Understanding     `json:"understanding"`
	Blockers       []Blocker         `json:"blockers"`
	Strengths      []Strength        `json:"strengths"`
	LLMSTxt        ManifestAlignment `json:"llms_txt"`
}

// Analysis is a persisted analysis run owned by a user.
type Analysis struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	URL       string          `json:"url"`
	Score     int             `json:"score"`
	Result    *AnalysisResult `json:"result,omitempty"`
	ShareURL  string          `json:"share_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewAnalysis creates a persisted record from a completed run.
func NewAnalysis(userID uuid.UUID, result *AnalysisResult) *Analysis {
	return &Analysis{
		ID:        uuid.New(),
		UserID:    userID,
		URL:       result.URL,
		Score:     result.Scores.Total,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
}

// StepEvent is one progress notification on the analysis stream.
type StepEvent struct {
	Type    string `json:"type"` // "step"
	Step    int    `json:"step"` // 1..5
	Message string `json:"message"`
}

// CompleteEvent is the terminal success event.
type CompleteEvent struct {
	Type   string          `json:"type"` // "complete"
	Result *AnalysisResult `json:"result"`
}

// ErrorEvent is the terminal failure event.
type ErrorEvent struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

// Pipeline step numbers and messages, in order. Event volume per run is fixed:
// five steps plus one terminal event.
const (
	StepCrawl      = 1
	StepExtract    = 2
	StepUnderstand = 3
	StepIdentify   = 4
	StepScore      = 5
)

// StepMessages maps step numbers to their fixed user-facing messages.
var StepMessages = map[int]string{
	StepCrawl:      "Crawling site pages",
	StepExtract:    "Extracting page content",
	StepUnderstand: "Understanding the business",
	StepIdentify:   "Identifying blockers and strengths",
	StepScore:      "Calculating confidence score",
}
