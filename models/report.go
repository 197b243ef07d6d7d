package models

import "time"

// Category is the report bucket a record lands in. Every input record maps to
// exactly one bucket.
type Category int

const (
	CategoryStrikingDistance Category = iota
	CategoryFullyOptimized
	CategoryBlocked
	CategoryURLNotFound
	CategorySkipped
	CategoryBlocklisted
	CategoryOutOfRange
	CategoryLowVolume
)

func (c Category) String() string {
	switch c {
	case CategoryStrikingDistance:
		return "striking_distance"
	case CategoryFullyOptimized:
		return "fully_optimized"
	case CategoryBlocked:
		return "blocked"
	case CategoryURLNotFound:
		return "url_not_found"
	case CategorySkipped:
		return "skipped"
	case CategoryBlocklisted:
		return "blocklisted"
	case CategoryOutOfRange:
		return "out_of_range"
	case CategoryLowVolume:
		return "low_volume"
	default:
		return "unknown"
	}
}

// ScoredRow is one report row: the source record, its match flags, and the
// derived score and recommendations.
type ScoredRow struct {
	KeywordRecord
	MatchResult
	PageTitle        string   `csv:"page_title" json:"page_title,omitempty"`
	OpportunityScore float64  `csv:"opportunity_score" json:"opportunity_score"`
	Recommendations  []string `csv:"recommendations" json:"recommendations,omitempty"`
	Category         Category `csv:"category" json:"category"`
	FailureKind      string   `csv:"failure_kind" json:"failure_kind,omitempty"`
}

// Rejection records an input row dropped before scheduling, with the reason.
type Rejection struct {
	Record KeywordRecord `json:"record"`
	Reason string        `json:"reason"`
}

// Summary carries the run counts exposed to the reporting layer.
type Summary struct {
	TotalRecords    int            `json:"total_records"`
	UniqueURLs      int            `json:"unique_urls"`
	CrawledOK       int            `json:"crawled_ok"`
	CrawlFailures   map[string]int `json:"crawl_failures"`
	SkippedURLs     int            `json:"skipped_urls"`
	Rejected        int            `json:"rejected"`
	BlocklistedRows int            `json:"blocklisted_rows"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Report is the complete pipeline output handed to the report writers.
type Report struct {
	StrikingDistance []ScoredRow `json:"striking_distance"`
	FullyOptimized   []ScoredRow `json:"fully_optimized"`
	Blocked          []ScoredRow `json:"blocked"`
	URLNotFound      []ScoredRow `json:"url_not_found"`
	Skipped          []ScoredRow `json:"skipped"`
	Blocklisted      []ScoredRow `json:"blocklisted"`
	OutOfRange       []ScoredRow `json:"out_of_range"`
	LowVolume        []ScoredRow `json:"low_volume"`
	Rejected         []Rejection `json:"rejected"`

	AllData []KeywordRecord `json:"all_data"`
	Summary Summary         `json:"summary"`
}

// BucketTotal sums every bucket, including rejects. The pipeline guarantees it
// equals the number of input records.
func (r *Report) BucketTotal() int {
	return len(r.StrikingDistance) + len(r.FullyOptimized) + len(r.Blocked) +
		len(r.URLNotFound) + len(r.Skipped) + len(r.Blocklisted) +
		len(r.OutOfRange) + len(r.LowVolume) + len(r.Rejected)
}
