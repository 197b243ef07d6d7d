// Package crawl fetches each distinct URL once, in concurrency-limited
// batches, and classifies every outcome.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/config"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

const urlKey = "url_key"

// Result is the raw per-URL fetch outcome before content extraction.
type Result struct {
	Kind        models.OutcomeKind
	StatusCode  int
	ContentType string
	Detail      string
	HTML        []byte
}

// Crawler schedules batched fetches over a colly collector.
type Crawler struct {
	cfg       *config.Config
	collector *colly.Collector
	limiter   *rate.Limiter
	Metrics   *Metrics

	results *lru.Cache[string, *Result]

	handlersOnce sync.Once
}

// New builds a crawler configured from cfg. cfg must already be validated.
func New(cfg *config.Config) (*Crawler, error) {
	collector := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Concurrency,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	limit := rate.Inf
	if cfg.BatchDelay > 0 {
		limit = rate.Every(cfg.BatchDelay)
	}

	return &Crawler{
		cfg:       cfg,
		collector: collector,
		limiter:   rate.NewLimiter(limit, 1),
		Metrics:   NewMetrics(),
	}, nil
}

// WithTransport swaps the collector's transport. Used by tests to install a
// mock transport.
func (c *Crawler) WithTransport(rt http.RoundTripper) {
	c.collector.WithTransport(rt)
}

// Run fetches every distinct URL exactly once and returns the outcome map.
// URLs beyond the max-URL cap are reported as skipped without being fetched.
// Per-URL failures never abort the run; the only error returns are context
// cancellation between batches.
func (c *Crawler) Run(ctx context.Context, urls []string) (map[string]*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	selected, skipped := c.partition(dedupe(urls))

	capacity := len(selected) + len(skipped)
	if capacity == 0 {
		return map[string]*Result{}, nil
	}
	// Sized to hold every outcome of the run, so nothing is ever evicted.
	cache, err := lru.New[string, *Result](capacity)
	if err != nil {
		return nil, fmt.Errorf("outcome cache: %w", err)
	}
	c.results = cache

	for _, u := range skipped {
		c.record(u, &Result{Kind: models.OutcomeSkipped, Detail: "max URL cap reached"})
	}
	c.Metrics.AddSkipped(len(skipped))

	c.configureHandlers()

	// Drain the limiter's initial token so the first inter-batch wait
	// actually waits.
	c.limiter.Allow()

	for start := 0; start < len(selected); start += c.cfg.Concurrency {
		if start > 0 {
			if err := c.limiter.Wait(ctx); err != nil {
				return c.snapshot(selected, skipped), err
			}
		}
		if err := ctx.Err(); err != nil {
			return c.snapshot(selected, skipped), err
		}

		end := start + c.cfg.Concurrency
		if end > len(selected) {
			end = len(selected)
		}
		batch := selected[start:end]

		for _, u := range batch {
			rctx := colly.NewContext()
			rctx.Put(urlKey, u)
			if err := c.collector.Request(http.MethodGet, u, nil, rctx, nil); err != nil {
				c.recordFailure(u, classifyError(err, 0))
			}
		}

		// Batch barrier: the next batch does not start until every fetch
		// in this one has settled.
		c.collector.Wait()
		c.Metrics.IncBatch()

		for _, u := range batch {
			if _, ok := c.results.Get(u); !ok {
				c.record(u, &Result{Kind: models.OutcomeNetworkError, Detail: "no response recorded"})
			}
		}

		slog.Debug("crawl batch settled",
			slog.Int("batch_size", len(batch)),
			slog.Int("fetched", end),
			slog.Int("total", len(selected)),
		)
	}

	return c.snapshot(selected, skipped), nil
}

func (c *Crawler) configureHandlers() {
	c.handlersOnce.Do(func() {
		c.collector.OnRequest(func(r *colly.Request) {
			r.Ctx.Put("start", time.Now())
			c.Metrics.IncRequest()
		})

		c.collector.OnResponse(func(r *colly.Response) {
			key := r.Ctx.Get(urlKey)
			if key == "" {
				return
			}
			if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
				c.Metrics.ObserveDuration(time.Since(start))
			}
			body := make([]byte, len(r.Body))
			copy(body, r.Body)
			contentType := ""
			if r.Headers != nil {
				contentType = r.Headers.Get("Content-Type")
			}
			c.record(key, &Result{
				Kind:        models.OutcomeSuccess,
				StatusCode:  r.StatusCode,
				ContentType: contentType,
				HTML:        body,
			})
		})

		c.collector.OnError(func(r *colly.Response, err error) {
			statusCode := 0
			key := ""
			if r != nil {
				statusCode = r.StatusCode
				if r.Request != nil && r.Request.Ctx != nil {
					key = r.Request.Ctx.Get(urlKey)
				}
			}
			if key == "" {
				return
			}
			classified := classifyError(err, statusCode)
			kind := outcomeKind(classified)

			slog.Error("fetch failed",
				slog.String("url", key),
				slog.String("outcome", kind.String()),
				slog.Any("error", err),
			)

			c.record(key, &Result{
				Kind:       kind,
				StatusCode: statusCode,
				Detail:     classified.Error(),
			})
		})
	})
}

// record stores an outcome, first writer wins. Outcomes are write-once per
// URL for the duration of the run.
func (c *Crawler) record(url string, res *Result) {
	if ok, _ := c.results.ContainsOrAdd(url, res); ok {
		return
	}
	c.Metrics.IncOutcome(res.Kind.String())
}

func (c *Crawler) recordFailure(url string, err error) {
	kind := outcomeKind(err)
	slog.Error("fetch rejected",
		slog.String("url", url),
		slog.String("outcome", kind.String()),
		slog.Any("error", err),
	)
	c.record(url, &Result{Kind: kind, Detail: err.Error()})
}

func (c *Crawler) snapshot(selected, skipped []string) map[string]*Result {
	out := make(map[string]*Result, len(selected)+len(skipped))
	for _, u := range selected {
		if res, ok := c.results.Get(u); ok {
			out[u] = res
		}
	}
	for _, u := range skipped {
		if res, ok := c.results.Get(u); ok {
			out[u] = res
		}
	}
	return out
}

// partition splits deduplicated URLs at the max-URL cap, keeping encounter
// order.
func (c *Crawler) partition(urls []string) (selected, skipped []string) {
	if len(urls) <= c.cfg.MaxURLs {
		return urls, nil
	}
	return urls[:c.cfg.MaxURLs], urls[c.cfg.MaxURLs:]
}

// dedupe removes duplicate URLs, case-sensitive exact match, preserving the
// first-encounter order.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
