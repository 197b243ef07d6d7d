// Package score ranks keyword/URL pairs by optimization potential.
package score

import (
	"math"
	"sort"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/match"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

// Recommendation text, emitted in fixed order: title, heading, content.
const (
	RecommendTitle   = "Add keyword to title tag"
	RecommendHeading = "Add keyword to H1 tag"
	RecommendContent = "Include keyword naturally in content"
)

// Scorer assigns categories, opportunity scores and recommendations for a
// striking-distance position band.
type Scorer struct {
	low       int
	high      int
	blocklist map[string]struct{}
}

// New builds a scorer for the [low, high] band. Blocklist terms are matched
// exactly, case-insensitively, after whitespace normalization.
func New(low, high int, blocklist []string) *Scorer {
	set := make(map[string]struct{}, len(blocklist))
	for _, term := range blocklist {
		if normalized := match.Normalize(term); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return &Scorer{low: low, high: high, blocklist: set}
}

// Blocklisted reports whether the keyword is excluded from analysis entirely.
func (s *Scorer) Blocklisted(keyword string) bool {
	_, ok := s.blocklist[match.Normalize(keyword)]
	return ok
}

// InBand reports whether a position falls inside the striking-distance band.
func (s *Scorer) InBand(position int) bool {
	return position >= s.low && position <= s.high
}

// Categorize derives the report category for one record. Priority order:
// non-Success outcome, then fully optimized, then striking distance.
// Blocklist and band membership are decided upstream before crawling.
func (s *Scorer) Categorize(outcome models.CrawlOutcome, result models.MatchResult) models.Category {
	switch outcome.Kind {
	case models.OutcomeBlocked:
		return models.CategoryBlocked
	case models.OutcomeSkipped:
		return models.CategorySkipped
	case models.OutcomeSuccess:
		if result.InTitle && result.InHeading && result.InBody {
			return models.CategoryFullyOptimized
		}
		return models.CategoryStrikingDistance
	default:
		return models.CategoryURLNotFound
	}
}

// Score computes the opportunity score for a striking-distance row.
//
// base rewards positions near the top of the band, a value in (0, 1];
// the traffic weight rewards impressions without zeroing out cold keywords;
// the gap factor rewards keywords missing from more on-page elements.
func (s *Scorer) Score(rec models.KeywordRecord, result models.MatchResult) float64 {
	base := float64(s.high-rec.Position+1) / float64(s.high-s.low+1)
	traffic := 1 + math.Log(1+float64(rec.Impressions))
	gap := float64(result.Missing()) / 3
	return base * traffic * gap
}

// Recommendations lists the on-page fixes for the missing elements, in the
// fixed order title, heading, content.
func (s *Scorer) Recommendations(result models.MatchResult) []string {
	var recs []string
	if !result.InTitle {
		recs = append(recs, RecommendTitle)
	}
	if !result.InHeading {
		recs = append(recs, RecommendHeading)
	}
	if !result.InBody {
		recs = append(recs, RecommendContent)
	}
	return recs
}

// SortRows orders rows by descending score, breaking ties by ascending
// position and then descending impressions.
func SortRows(rows []models.ScoredRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].OpportunityScore != rows[j].OpportunityScore {
			return rows[i].OpportunityScore > rows[j].OpportunityScore
		}
		if rows[i].Position != rows[j].Position {
			return rows[i].Position < rows[j].Position
		}
		return rows[i].Impressions > rows[j].Impressions
	})
}
