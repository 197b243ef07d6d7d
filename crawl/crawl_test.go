package crawl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/config"
	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Concurrency = 2
	cfg.BatchDelay = 0
	cfg.Timeout = 2 * time.Second
	return cfg
}

func newTestCrawler(t *testing.T, cfg *config.Config) (*Crawler, *httpmock.MockTransport) {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new crawler: %v", err)
	}
	transport := httpmock.NewMockTransport()
	c.WithTransport(transport)
	return c, transport
}

func TestRunClassifiesOutcomes(t *testing.T) {
	cfg := testConfig()
	c, transport := newTestCrawler(t, cfg)

	transport.RegisterResponder("GET", "http://example.test/ok",
		httpmock.NewStringResponder(200, "<html><title>ok</title></html>"))
	transport.RegisterResponder("GET", "http://example.test/missing",
		httpmock.NewStringResponder(404, ""))
	transport.RegisterResponder("GET", "http://example.test/forbidden",
		httpmock.NewStringResponder(403, ""))
	transport.RegisterResponder("GET", "http://example.test/ratelimited",
		httpmock.NewStringResponder(429, ""))
	transport.RegisterResponder("GET", "http://example.test/down",
		httpmock.NewErrorResponder(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))
	transport.RegisterResponder("GET", "http://example.test/slow",
		httpmock.NewErrorResponder(&net.DNSError{IsTimeout: true}))

	urls := []string{
		"http://example.test/ok",
		"http://example.test/missing",
		"http://example.test/forbidden",
		"http://example.test/ratelimited",
		"http://example.test/down",
		"http://example.test/slow",
	}

	results, err := c.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(urls) {
		t.Fatalf("results = %d, want %d", len(results), len(urls))
	}

	expect := map[string]models.OutcomeKind{
		"http://example.test/ok":          models.OutcomeSuccess,
		"http://example.test/missing":     models.OutcomeNotFound,
		"http://example.test/forbidden":   models.OutcomeBlocked,
		"http://example.test/ratelimited": models.OutcomeBlocked,
		"http://example.test/down":        models.OutcomeNetworkError,
		"http://example.test/slow":        models.OutcomeTimedOut,
	}
	for url, kind := range expect {
		res, ok := results[url]
		if !ok {
			t.Fatalf("missing result for %s", url)
		}
		if res.Kind != kind {
			t.Errorf("%s: kind = %s, want %s", url, res.Kind, kind)
		}
	}

	if got := string(results["http://example.test/ok"].HTML); !strings.Contains(got, "<title>ok</title>") {
		t.Fatalf("success outcome should carry the body, got %q", got)
	}
}

func TestRunFetchesEachURLOnce(t *testing.T) {
	cfg := testConfig()
	c, transport := newTestCrawler(t, cfg)

	transport.RegisterResponder("GET", "http://example.test/page",
		httpmock.NewStringResponder(200, "<html></html>"))

	urls := []string{
		"http://example.test/page",
		"http://example.test/page",
		"http://example.test/page",
	}

	results, err := c.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}

	calls := transport.GetCallCountInfo()
	if got := calls["GET http://example.test/page"]; got != 1 {
		t.Fatalf("fetch count = %d, want exactly 1", got)
	}
}

func TestRunMaxURLCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxURLs = 1
	c, transport := newTestCrawler(t, cfg)

	transport.RegisterResponder("GET", "http://example.test/first",
		httpmock.NewStringResponder(200, "<html></html>"))
	transport.RegisterResponder("GET", "http://example.test/second",
		httpmock.NewStringResponder(200, "<html></html>"))

	results, err := c.Run(context.Background(), []string{
		"http://example.test/first",
		"http://example.test/second",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if results["http://example.test/first"].Kind != models.OutcomeSuccess {
		t.Fatalf("first URL should be fetched, got %s", results["http://example.test/first"].Kind)
	}
	if results["http://example.test/second"].Kind != models.OutcomeSkipped {
		t.Fatalf("second URL should be skipped, got %s", results["http://example.test/second"].Kind)
	}

	calls := transport.GetCallCountInfo()
	if got := calls["GET http://example.test/second"]; got != 0 {
		t.Fatalf("capped URL was fetched %d times", got)
	}
}

func TestRunFailureIsolation(t *testing.T) {
	cfg := testConfig()
	cfg.Concurrency = 4
	c, transport := newTestCrawler(t, cfg)

	// one failing URL inside a batch of four
	transport.RegisterResponder("GET", "http://example.test/bad",
		httpmock.NewErrorResponder(errors.New("boom")))
	for i := 0; i < 3; i++ {
		transport.RegisterResponder("GET", fmt.Sprintf("http://example.test/good%d", i),
			httpmock.NewStringResponder(200, "<html></html>"))
	}

	urls := []string{
		"http://example.test/good0",
		"http://example.test/bad",
		"http://example.test/good1",
		"http://example.test/good2",
	}

	results, err := c.Run(context.Background(), urls)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i := 0; i < 3; i++ {
		url := fmt.Sprintf("http://example.test/good%d", i)
		if results[url].Kind != models.OutcomeSuccess {
			t.Errorf("%s: sibling failure leaked, kind = %s", url, results[url].Kind)
		}
	}
	if results["http://example.test/bad"].Kind != models.OutcomeNetworkError {
		t.Fatalf("bad URL kind = %s", results["http://example.test/bad"].Kind)
	}
}

func TestRunInvalidURL(t *testing.T) {
	cfg := testConfig()
	c, _ := newTestCrawler(t, cfg)

	results, err := c.Run(context.Background(), []string{"not a url"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	res, ok := results["not a url"]
	if !ok {
		t.Fatalf("invalid URL should still have an outcome")
	}
	if res.Kind != models.OutcomeNetworkError {
		t.Fatalf("kind = %s, want network_error", res.Kind)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig()
	c, transport := newTestCrawler(t, cfg)
	transport.RegisterResponder("GET", "http://example.test/page",
		httpmock.NewStringResponder(200, "<html></html>"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, []string{"http://example.test/page"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunEmptyInput(t *testing.T) {
	cfg := testConfig()
	c, _ := newTestCrawler(t, cfg)

	results, err := c.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %d, want 0", len(results))
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   models.OutcomeKind
	}{
		{name: "context timeout", err: context.DeadlineExceeded, expected: models.OutcomeTimedOut},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, expected: models.OutcomeTimedOut},
		{name: "connection refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expected: models.OutcomeNetworkError},
		{name: "forbidden", statusCode: http.StatusForbidden, expected: models.OutcomeBlocked},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, expected: models.OutcomeBlocked},
		{name: "not found", statusCode: http.StatusNotFound, expected: models.OutcomeNotFound},
		{name: "gone", statusCode: http.StatusGone, expected: models.OutcomeNotFound},
		{name: "server error", statusCode: http.StatusInternalServerError, expected: models.OutcomeNetworkError},
		{name: "plain error", err: errors.New("some other error"), expected: models.OutcomeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyError(tt.err, tt.statusCode)
			if got := outcomeKind(classified); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %s, want %s", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestDedupePreservesOrder(t *testing.T) {
	in := []string{"b", "a", "b", "c", "a"}
	got := dedupe(in)
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("dedupe = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupe = %v, want %v", got, want)
		}
	}
}
