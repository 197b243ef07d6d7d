package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const samplePage = `<!doctype html><html lang="en"><head>
<title> Running Shoe Reviews </title>
<style>body { color: red; }</style>
<script>var tracker = "do not index";</script>
</head><body>
<h1> Top Picks </h1>
<h1>Second Heading</h1>
<p>best running shoes for trail</p>
<noscript>enable javascript</noscript>
</body></html>`

func TestExtractElements(t *testing.T) {
	e := New(5000)
	page := e.Extract([]byte(samplePage), "text/html; charset=utf-8")

	if page.Title != "Running Shoe Reviews" {
		t.Fatalf("title = %q", page.Title)
	}
	if page.Heading != "Top Picks" {
		t.Fatalf("heading should be the first h1 only, got %q", page.Heading)
	}
	if !strings.Contains(page.Body, "best running shoes for trail") {
		t.Fatalf("body missing paragraph text: %q", page.Body)
	}
	if strings.Contains(page.Body, "color: red") || strings.Contains(page.Body, "do not index") {
		t.Fatalf("script/style text leaked into body: %q", page.Body)
	}
	if strings.Contains(page.Body, "enable javascript") {
		t.Fatalf("noscript text leaked into body: %q", page.Body)
	}
}

func TestExtractMissingElements(t *testing.T) {
	e := New(5000)
	page := e.Extract([]byte("<html><body><p>just text</p></body></html>"), "text/html")

	if page.Title != "" {
		t.Fatalf("title should be empty, got %q", page.Title)
	}
	if page.Heading != "" {
		t.Fatalf("heading should be empty, got %q", page.Heading)
	}
	if page.Body != "just text" {
		t.Fatalf("body = %q", page.Body)
	}
}

func TestExtractMalformedMarkup(t *testing.T) {
	e := New(5000)
	inputs := []string{
		"",
		"<<<<>>>>",
		"<html><body><div><p>unclosed",
		"\x00\x01\x02 binary junk",
	}
	for _, in := range inputs {
		page := e.Extract([]byte(in), "text/html")
		_ = page // must not panic; fields may be empty
	}
}

func TestExtractBodyTruncation(t *testing.T) {
	long := strings.Repeat("word ", 3000)
	html := "<html><body><p>" + long + "</p></body></html>"

	e := New(100)
	page := e.Extract([]byte(html), "text/html")
	if got := utf8.RuneCountInString(page.Body); got > 100 {
		t.Fatalf("body length = %d chars, want <= 100", got)
	}
}

func TestTruncateCharsMultibyte(t *testing.T) {
	s := strings.Repeat("ü", 10)
	got := TruncateChars(s, 4)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a multibyte sequence: %q", got)
	}
	if utf8.RuneCountInString(got) != 4 {
		t.Fatalf("rune count = %d, want 4", utf8.RuneCountInString(got))
	}
}

func TestTruncateCharsIdempotent(t *testing.T) {
	s := strings.Repeat("abcü", 50)
	once := TruncateChars(s, 33)
	twice := TruncateChars(once, 33)
	if once != twice {
		t.Fatalf("truncation not idempotent: %q vs %q", once, twice)
	}
}

func TestTruncateCharsShortInput(t *testing.T) {
	if got := TruncateChars("short", 100); got != "short" {
		t.Fatalf("short input should be unchanged, got %q", got)
	}
}
