package models

// ContentElement is one text node as seen by a reader of the page.
type ContentElement struct {
	Text      string `json:"text"`
	WordCount int    `json:"wordCount"`
	Visible   bool   `json:"isVisible"`
	Category  string `json:"category"`
	TagName   string `json:"tagName"`
	ClassName string `json:"className,omitempty"`
	ID        string `json:"id,omitempty"`
}

// Snapshot is the extracted text content of a page in one rendering mode.
type Snapshot struct {
	URL         string           `json:"url,omitempty"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Canonical   string           `json:"canonical,omitempty"`
	Language    string           `json:"language,omitempty"`
	Elements    []ContentElement `json:"elements"`
	TotalWords  int              `json:"totalWords"`
}

// MetricValues holds the p75 samples returned by the UX report API.
// A nil field means the API had no data for that metric.
type MetricValues struct {
	TTFB *float64 `json:"ttfb"`
	CLS  *float64 `json:"cls"`
	INP  *float64 `json:"inp"`
}

// Empty reports whether no metric carries a value.
func (m MetricValues) Empty() bool {
	return m.TTFB == nil && m.CLS == nil && m.INP == nil
}
