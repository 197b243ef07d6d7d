package score

import (
	"testing"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

func TestBlocklisted(t *testing.T) {
	s := New(3, 20, []string{"Brand Name", "  competitor  "})

	tests := []struct {
		keyword string
		want    bool
	}{
		{"brand name", true},
		{"BRAND NAME", true},
		{"brand  name", true},
		{"competitor", true},
		{"brand name shoes", false}, // exact match only, not substring
		{"running shoes", false},
	}
	for _, tt := range tests {
		if got := s.Blocklisted(tt.keyword); got != tt.want {
			t.Errorf("Blocklisted(%q) = %v, want %v", tt.keyword, got, tt.want)
		}
	}
}

func TestInBand(t *testing.T) {
	s := New(3, 20, nil)
	for pos, want := range map[int]bool{1: false, 2: false, 3: true, 10: true, 20: true, 21: false} {
		if got := s.InBand(pos); got != want {
			t.Errorf("InBand(%d) = %v, want %v", pos, got, want)
		}
	}
}

func TestCategorize(t *testing.T) {
	s := New(3, 20, nil)

	tests := []struct {
		name    string
		outcome models.CrawlOutcome
		result  models.MatchResult
		want    models.Category
	}{
		{
			name:    "blocked outcome",
			outcome: models.CrawlOutcome{Kind: models.OutcomeBlocked},
			want:    models.CategoryBlocked,
		},
		{
			name:    "timeout outcome",
			outcome: models.CrawlOutcome{Kind: models.OutcomeTimedOut},
			want:    models.CategoryURLNotFound,
		},
		{
			name:    "network error outcome",
			outcome: models.CrawlOutcome{Kind: models.OutcomeNetworkError},
			want:    models.CategoryURLNotFound,
		},
		{
			name:    "not found outcome",
			outcome: models.CrawlOutcome{Kind: models.OutcomeNotFound},
			want:    models.CategoryURLNotFound,
		},
		{
			name:    "skipped outcome",
			outcome: models.CrawlOutcome{Kind: models.OutcomeSkipped},
			want:    models.CategorySkipped,
		},
		{
			name:    "all checks pass",
			outcome: models.CrawlOutcome{Kind: models.OutcomeSuccess},
			result:  models.MatchResult{InTitle: true, InHeading: true, InBody: true},
			want:    models.CategoryFullyOptimized,
		},
		{
			name:    "one check failing",
			outcome: models.CrawlOutcome{Kind: models.OutcomeSuccess},
			result:  models.MatchResult{InTitle: true, InHeading: true, InBody: false},
			want:    models.CategoryStrikingDistance,
		},
		{
			name:    "all checks failing",
			outcome: models.CrawlOutcome{Kind: models.OutcomeSuccess},
			want:    models.CategoryStrikingDistance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Categorize(tt.outcome, tt.result); got != tt.want {
				t.Errorf("Categorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreMonotonicInPosition(t *testing.T) {
	s := New(3, 20, nil)
	result := models.MatchResult{InTitle: false, InHeading: true, InBody: true}

	prev := -1.0
	for pos := 20; pos >= 3; pos-- {
		rec := models.KeywordRecord{Position: pos, Impressions: 500}
		got := s.Score(rec, result)
		if got <= 0 {
			t.Fatalf("score at position %d = %f, want > 0", pos, got)
		}
		if got < prev {
			t.Fatalf("score decreased from %f to %f as position improved to %d", prev, got, pos)
		}
		prev = got
	}
}

func TestScoreGapFactorOrdering(t *testing.T) {
	s := New(3, 20, nil)
	rec := models.KeywordRecord{Position: 5, Impressions: 1000}

	allMissing := s.Score(rec, models.MatchResult{})
	oneMissing := s.Score(rec, models.MatchResult{InTitle: true, InHeading: true})
	nonePresent := s.Score(rec, models.MatchResult{InTitle: true, InHeading: true, InBody: true})

	if !(allMissing > oneMissing) {
		t.Fatalf("missing all elements (%f) should outscore missing one (%f)", allMissing, oneMissing)
	}
	if nonePresent != 0 {
		t.Fatalf("fully present keyword should score zero, got %f", nonePresent)
	}
}

func TestScoreImpressionsWeight(t *testing.T) {
	s := New(3, 20, nil)
	result := models.MatchResult{}

	cold := s.Score(models.KeywordRecord{Position: 5, Impressions: 0}, result)
	hot := s.Score(models.KeywordRecord{Position: 5, Impressions: 10000}, result)

	if cold <= 0 {
		t.Fatalf("zero-impression keyword must not score zero, got %f", cold)
	}
	if hot <= cold {
		t.Fatalf("high impressions (%f) should outscore zero impressions (%f)", hot, cold)
	}
}

func TestRecommendations(t *testing.T) {
	s := New(3, 20, nil)

	recs := s.Recommendations(models.MatchResult{InBody: true})
	if len(recs) != 2 || recs[0] != RecommendTitle || recs[1] != RecommendHeading {
		t.Fatalf("recommendations = %v", recs)
	}

	recs = s.Recommendations(models.MatchResult{InTitle: true, InHeading: true, InBody: true})
	if len(recs) != 0 {
		t.Fatalf("fully optimized keyword should have no recommendations, got %v", recs)
	}

	recs = s.Recommendations(models.MatchResult{})
	want := []string{RecommendTitle, RecommendHeading, RecommendContent}
	if len(recs) != 3 {
		t.Fatalf("recommendations = %v", recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("recommendation order = %v, want %v", recs, want)
		}
	}
}

func TestSortRows(t *testing.T) {
	rows := []models.ScoredRow{
		{KeywordRecord: models.KeywordRecord{Keyword: "c", Position: 10, Impressions: 100}, OpportunityScore: 1.5},
		{KeywordRecord: models.KeywordRecord{Keyword: "a", Position: 4, Impressions: 100}, OpportunityScore: 3.0},
		{KeywordRecord: models.KeywordRecord{Keyword: "b", Position: 4, Impressions: 900}, OpportunityScore: 3.0},
		{KeywordRecord: models.KeywordRecord{Keyword: "d", Position: 3, Impressions: 50}, OpportunityScore: 3.0},
	}

	SortRows(rows)

	got := []string{rows[0].Keyword, rows[1].Keyword, rows[2].Keyword, rows[3].Keyword}
	want := []string{"d", "b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}
