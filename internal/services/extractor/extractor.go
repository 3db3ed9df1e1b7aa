package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Extractor parses raw page markup into a normalized PageExtraction.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract produces one PageExtraction from raw markup. Structured data is
// scanned before boilerplate removal; everything else is extracted from the
// stripped document.
func (e *Extractor) Extract(html, pageURL, pageType string) (*PageExtraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	page := &PageExtraction{
		URL:      pageURL,
		PageType: pageType,
	}

	// Schema scan runs on the unmodified document.
	page.Schema = extractSchema(doc)

	// Strip boilerplate before content extraction.
	doc.Find("script, style, noscript, iframe, nav, footer, header, aside").Remove()

	page.Meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		page.Meta.Description = strings.TrimSpace(desc)
	}

	page.Headings = extractHeadings(doc)
	page.Hero = extractHero(doc)
	page.Paragraphs = extractParagraphs(doc)
	page.Lists = extractLists(doc)
	page.FAQs = extractFAQs(doc)

	text := patternText(page)
	page.DefinitionStatements = ExtractDefinitions(text)
	page.AudienceStatements = ExtractAudienceStatements(text)
	page.Claims = ExtractClaims(text)
	page.ProofPoints = ExtractProofPoints(text)

	return page, nil
}

// extractHeadings collects h1-h3 text, length-filtered.
func extractHeadings(doc *goquery.Document) []Heading {
	var headings []Heading

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := normalizeSpace(s.Text())
		if len(text) <= minHeadingLen || len(text) >= maxHeadingLen {
			return
		}
		level := 1
		switch goquery.NodeName(s) {
		case "h2":
			level = 2
		case "h3":
			level = 3
		}
		headings = append(headings, Heading{Level: level, Text: text})
	})

	return headings
}

// extractHero takes the first h1 as headline; the subheadline is the first
// paragraph inside the h1's parent, or else the element immediately following
// the h1 when it is a paragraph, kept only within length bounds.
func extractHero(doc *goquery.Document) Hero {
	hero := Hero{}

	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return hero
	}
	hero.Headline = normalizeSpace(h1.Text())

	sub := h1.Parent().Find("p").First()
	if sub.Length() == 0 {
		next := h1.Next()
		if goquery.NodeName(next) == "p" {
			sub = next
		}
	}

	if sub != nil && sub.Length() > 0 {
		text := normalizeSpace(sub.Text())
		if len(text) >= minSubheadLen && len(text) < maxSubheadLen {
			hero.Subheadline = text
		}
	}

	return hero
}

// extractParagraphs collects p text, length-filtered and capped.
func extractParagraphs(doc *goquery.Document) []string {
	var paragraphs []string

	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalizeSpace(s.Text())
		if len(text) >= minParagraphLen && len(text) < maxParagraphLen {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < maxParagraphs
	})

	return paragraphs
}

// extractLists collects ul/ol item groups, capped.
func extractLists(doc *goquery.Document) [][]string {
	var lists [][]string

	doc.Find("ul, ol").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var items []string
		s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			text := normalizeSpace(li.Text())
			if text != "" && len(text) < maxListItemLen {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			lists = append(lists, items)
		}
		return len(lists) < maxListGroups
	})

	return lists
}

// extractFAQs mines question-styled h2/h3/h4 headings with a following
// paragraph as the answer.
func extractFAQs(doc *goquery.Document) []FAQ {
	var faqs []FAQ

	doc.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		question := normalizeSpace(s.Text())
		if !looksLikeQuestion(question) {
			return
		}

		answer := normalizeSpace(s.Next().Filter("p").Text())
		if len(answer) < minParagraphLen {
			return
		}
		answer = truncate(answer, maxFAQAnswerLen)

		faqs = append(faqs, FAQ{Question: question, Answer: answer})
	})

	return faqs
}

// looksLikeQuestion checks for a question mark or an interrogative opener.
func looksLikeQuestion(text string) bool {
	if text == "" {
		return false
	}
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	return strings.HasPrefix(lower, "what") ||
		strings.HasPrefix(lower, "how") ||
		strings.HasPrefix(lower, "why")
}

// truncate caps s at n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// patternText concatenates hero, headings, and paragraphs for the pattern
// families.
func patternText(page *PageExtraction) string {
	var b strings.Builder

	b.WriteString(page.Hero.Headline)
	b.WriteString(". ")
	b.WriteString(page.Hero.Subheadline)
	b.WriteString(". ")
	for _, h := range page.Headings {
		b.WriteString(h.Text)
		b.WriteString(". ")
	}
	for _, p := range page.Paragraphs {
		b.WriteString(p)
		b.WriteString(" ")
	}

	return b.String()
}

// normalizeSpace collapses whitespace runs into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
