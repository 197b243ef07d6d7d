// Package models defines the data shapes flowing through the analysis pipeline.
package models

// KeywordRecord is one row of a keyword-ranking export. Records are immutable
// once ingested; the pipeline only reads them.
type KeywordRecord struct {
	URL         string  `csv:"url" json:"url"`
	Keyword     string  `csv:"keyword" json:"keyword"`
	Position    int     `csv:"position" json:"position"`
	Impressions int     `csv:"impressions" json:"impressions"`
	Clicks      int     `csv:"clicks" json:"clicks"`
	CTR         float64 `csv:"ctr" json:"ctr,omitempty"`
}

// OutcomeKind identifies the terminal result of fetching one URL.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeBlocked
	OutcomeNotFound
	OutcomeTimedOut
	OutcomeNetworkError
	// OutcomeSkipped marks URLs beyond the max-URL cap. They were never
	// fetched, which is a different thing from an unreachable page.
	OutcomeSkipped
)

// String returns the label used in reports and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTimedOut:
		return "timeout"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// PageContent holds the normalized SEO elements extracted from a fetched page.
type PageContent struct {
	Title   string `json:"title"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// CrawlOutcome is the cached per-URL result shared by every keyword record
// referencing that URL. One outcome exists per distinct URL per run.
type CrawlOutcome struct {
	URL        string      `json:"url"`
	Kind       OutcomeKind `json:"kind"`
	StatusCode int         `json:"status_code,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	Page       PageContent `json:"page"`
}

// MatchResult records where a keyword was found on its page.
type MatchResult struct {
	InTitle   bool `csv:"in_title" json:"in_title"`
	InHeading bool `csv:"in_h1" json:"in_h1"`
	InBody    bool `csv:"in_content" json:"in_content"`
}

// Missing counts the on-page checks the keyword currently fails.
func (m MatchResult) Missing() int {
	n := 0
	if !m.InTitle {
		n++
	}
	if !m.InHeading {
		n++
	}
	if !m.InBody {
		n++
	}
	return n
}
