package crawler

import "time"

// Page is one fetched page, ready for extraction.
type Page struct {
	URL      string `json:"url"`
	PageType string `json:"page_type"`
	HTML     string `json:"-"`
}

// Result is the output of one bounded crawl. Pages is ordered with the
// homepage first; LLMSTxt is empty when the manifest is absent.
type Result struct {
	BaseURL   string        `json:"base_url"`
	Pages     []Page        `json:"pages"`
	LLMSTxt   string        `json:"llms_txt,omitempty"`
	CrawledAt time.Time     `json:"crawled_at"`
	Duration  time.Duration `json:"duration"`
}

// HasManifest reports whether an llms.txt file was found at the site root.
func (r *Result) HasManifest() bool {
	return r.LLMSTxt != ""
}
