package match

import (
	"testing"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

func TestContains(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		text    string
		want    bool
	}{
		{
			name:    "case insensitive",
			keyword: "running shoes",
			text:    "Best Running Shoes Today",
			want:    true,
		},
		{
			name:    "whitespace normalized keyword",
			keyword: "running   shoes",
			text:    "best running shoes for trail",
			want:    true,
		},
		{
			name:    "whitespace normalized text",
			keyword: "running shoes",
			text:    "best running\n\tshoes for trail",
			want:    true,
		},
		{
			name:    "absent",
			keyword: "hiking boots",
			text:    "best running shoes for trail",
			want:    false,
		},
		{
			name:    "partial word still matches as substring",
			keyword: "run",
			text:    "running",
			want:    true,
		},
		{
			name:    "empty text",
			keyword: "running shoes",
			text:    "",
			want:    false,
		},
		{
			name:    "unicode case folding",
			keyword: "schuhgröße",
			text:    "Die richtige SCHUHGRÖSSE finden",
			want:    false, // ß does not fold to SS under simple lowering
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.keyword, tt.text); got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", tt.keyword, tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Best  Running\tShoes ", "best running shoes"},
		{"already normal", "already normal"},
		{"", ""},
		{"\n\n", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestKeyword(t *testing.T) {
	page := models.PageContent{
		Title:   "Running Shoe Reviews",
		Heading: "Top Picks",
		Body:    "best running shoes for trail",
	}

	got := Keyword("best running shoes", page)
	want := models.MatchResult{InTitle: false, InHeading: false, InBody: true}
	if got != want {
		t.Fatalf("Keyword() = %+v, want %+v", got, want)
	}

	got = Keyword("top picks", page)
	if !got.InHeading || got.InTitle || got.InBody {
		t.Fatalf("Keyword(top picks) = %+v", got)
	}
}
