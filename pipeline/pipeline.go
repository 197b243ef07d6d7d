// Package pipeline coordinates one analysis run: filtering keyword records,
// crawling their URLs, matching page content and bucketing every record into
// the final report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/config"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/crawl"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/extract"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/ingest"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/match"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/score"
)

// URLFetcher fetches every distinct URL once and returns the outcome map.
// *crawl.Crawler is the production implementation.
type URLFetcher interface {
	Run(ctx context.Context, urls []string) (map[string]*crawl.Result, error)
}

// Pipeline runs the full analysis over an ingested record set.
type Pipeline struct {
	cfg       *config.Config
	fetcher   URLFetcher
	extractor *extract.Extractor
	scorer    *score.Scorer
}

// New builds a pipeline. cfg must already be validated.
func New(cfg *config.Config, fetcher URLFetcher) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extract.New(cfg.BodyCharLimit),
		scorer:    score.New(cfg.PositionLow, cfg.PositionHigh, cfg.Blocklist),
	}
}

// Run analyses records end to end and returns the bucketed report. Every
// input record lands in exactly one bucket; Run fails if that accounting
// ever breaks, and when the crawl is cut short by context cancellation.
func (p *Pipeline) Run(ctx context.Context, records []models.KeywordRecord) (*models.Report, error) {
	report := &models.Report{
		AllData: records,
		Summary: models.Summary{
			TotalRecords:  len(records),
			CrawlFailures: make(map[string]int),
			StartTime:     time.Now(),
		},
	}

	kept := p.filter(records, report)

	urls := collectURLs(kept)
	report.Summary.UniqueURLs = len(urls)

	slog.Info("starting crawl",
		slog.Int("records", len(kept)),
		slog.Int("unique_urls", len(urls)),
	)

	results, err := p.fetcher.Run(ctx, urls)
	if err != nil {
		return report, fmt.Errorf("crawl: %w", err)
	}

	outcomes := p.extractAll(results)
	tallyOutcomes(report, results)

	for _, rec := range kept {
		outcome, ok := outcomes[rec.URL]
		if !ok {
			outcome = models.CrawlOutcome{
				URL:    rec.URL,
				Kind:   models.OutcomeNetworkError,
				Detail: "no crawl outcome",
			}
		}
		p.bucket(report, rec, outcome)
	}

	score.SortRows(report.StrikingDistance)
	report.Summary.EndTime = time.Now()

	if got := report.BucketTotal(); got != len(records) {
		return report, fmt.Errorf("bucket totals add up to %d, want %d", got, len(records))
	}

	slog.Info("analysis complete",
		slog.Int("striking_distance", len(report.StrikingDistance)),
		slog.Int("fully_optimized", len(report.FullyOptimized)),
		slog.Int("crawled_ok", report.Summary.CrawledOK),
		slog.Duration("elapsed", report.Summary.Duration()),
	)
	return report, nil
}

// filter drops records that never reach the crawler: malformed rows,
// blocklisted keywords, positions outside the band and low-volume keywords.
// Each drop is itself a report bucket.
func (p *Pipeline) filter(records []models.KeywordRecord, report *models.Report) []models.KeywordRecord {
	kept := make([]models.KeywordRecord, 0, len(records))
	for _, rec := range records {
		if err := ingest.ValidateRecord(rec); err != nil {
			report.Rejected = append(report.Rejected, models.Rejection{Record: rec, Reason: err.Error()})
			continue
		}
		switch {
		case p.scorer.Blocklisted(rec.Keyword):
			report.Blocklisted = append(report.Blocklisted, models.ScoredRow{
				KeywordRecord: rec,
				Category:      models.CategoryBlocklisted,
			})
		case !p.scorer.InBand(rec.Position):
			report.OutOfRange = append(report.OutOfRange, models.ScoredRow{
				KeywordRecord: rec,
				Category:      models.CategoryOutOfRange,
			})
		case rec.Impressions < p.cfg.MinImpressions:
			report.LowVolume = append(report.LowVolume, models.ScoredRow{
				KeywordRecord: rec,
				Category:      models.CategoryLowVolume,
			})
		default:
			kept = append(kept, rec)
		}
	}
	report.Summary.Rejected = len(report.Rejected)
	report.Summary.BlocklistedRows = len(report.Blocklisted)
	return kept
}

// extractAll parses page content once per successfully fetched URL. Keyword
// records sharing a URL all read the same outcome.
func (p *Pipeline) extractAll(results map[string]*crawl.Result) map[string]models.CrawlOutcome {
	outcomes := make(map[string]models.CrawlOutcome, len(results))
	for url, res := range results {
		outcome := models.CrawlOutcome{
			URL:        url,
			Kind:       res.Kind,
			StatusCode: res.StatusCode,
			Detail:     res.Detail,
		}
		if res.Kind == models.OutcomeSuccess {
			outcome.Page = p.extractor.Extract(res.HTML, res.ContentType)
		}
		outcomes[url] = outcome
	}
	return outcomes
}

func (p *Pipeline) bucket(report *models.Report, rec models.KeywordRecord, outcome models.CrawlOutcome) {
	var result models.MatchResult
	if outcome.Kind == models.OutcomeSuccess {
		result = match.Keyword(rec.Keyword, outcome.Page)
	}

	row := models.ScoredRow{
		KeywordRecord: rec,
		MatchResult:   result,
		Category:      p.scorer.Categorize(outcome, result),
	}

	switch row.Category {
	case models.CategoryStrikingDistance:
		row.PageTitle = outcome.Page.Title
		row.OpportunityScore = p.scorer.Score(rec, result)
		row.Recommendations = p.scorer.Recommendations(result)
		report.StrikingDistance = append(report.StrikingDistance, row)
	case models.CategoryFullyOptimized:
		row.PageTitle = outcome.Page.Title
		report.FullyOptimized = append(report.FullyOptimized, row)
	case models.CategoryBlocked:
		row.FailureKind = outcome.Kind.String()
		report.Blocked = append(report.Blocked, row)
	case models.CategorySkipped:
		row.FailureKind = outcome.Kind.String()
		report.Skipped = append(report.Skipped, row)
	default:
		row.FailureKind = outcome.Kind.String()
		report.URLNotFound = append(report.URLNotFound, row)
	}
}

func tallyOutcomes(report *models.Report, results map[string]*crawl.Result) {
	for _, res := range results {
		switch res.Kind {
		case models.OutcomeSuccess:
			report.Summary.CrawledOK++
		case models.OutcomeSkipped:
			report.Summary.SkippedURLs++
		default:
			report.Summary.CrawlFailures[res.Kind.String()]++
		}
	}
}

// collectURLs deduplicates URLs keeping the first-encounter order, which
// decides who survives the max-URL cap downstream.
func collectURLs(records []models.KeywordRecord) []string {
	seen := make(map[string]struct{}, len(records))
	urls := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.URL]; ok {
			continue
		}
		seen[rec.URL] = struct{}{}
		urls = append(urls, rec.URL)
	}
	return urls
}
