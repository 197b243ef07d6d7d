// Package extract pulls normalized SEO elements out of raw page markup.
package extract

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Extractor parses successful fetches into title, first H1 and body text.
type Extractor struct {
	bodyLimit int
}

// New returns an extractor that truncates body text to bodyLimit characters.
func New(bodyLimit int) *Extractor {
	if bodyLimit <= 0 {
		bodyLimit = 5000
	}
	return &Extractor{bodyLimit: bodyLimit}
}

// Extract never fails: a reachable page with unparseable content is not the
// same failure class as an unreachable one, so parse problems degrade to
// empty fields.
func (e *Extractor) Extract(data []byte, contentType string) models.PageContent {
	utf8data := decodeToUTF8(data, contentType)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return models.PageContent{}
	}

	doc.Find("script,noscript,style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	title := strings.TrimSpace(doc.Find("title").First().Text())
	heading := strings.TrimSpace(doc.Find("h1").First().Text())

	body := doc.Find("body").Text()
	body = strings.TrimSpace(whitespaceRe.ReplaceAllString(body, " "))
	body = TruncateChars(body, e.bodyLimit)

	return models.PageContent{
		Title:   title,
		Heading: heading,
		Body:    body,
	}
}

// TruncateChars cuts s to at most limit characters, never splitting a
// multibyte sequence. Re-truncating already-truncated text is a no-op.
func TruncateChars(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func decodeToUTF8(data []byte, contentType string) []byte {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}
