// Package match checks keyword presence in extracted page elements.
//
// Presence is literal substring containment after case folding and whitespace
// normalization. No stemming, no synonym expansion: the behavior stays
// auditable and deterministic.
package match

import (
	"strings"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

// Normalize lowercases s and collapses runs of whitespace to single spaces.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Contains reports whether keyword occurs in text, both normalized.
func Contains(keyword, text string) bool {
	keyword = Normalize(keyword)
	if keyword == "" || text == "" {
		return false
	}
	return strings.Contains(Normalize(text), keyword)
}

// Keyword derives the MatchResult for a keyword against a page's elements.
func Keyword(keyword string, page models.PageContent) models.MatchResult {
	return models.MatchResult{
		InTitle:   Contains(keyword, page.Title),
		InHeading: Contains(keyword, page.Heading),
		InBody:    Contains(keyword, page.Body),
	}
}
