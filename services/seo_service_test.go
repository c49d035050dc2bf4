package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractSeoHintsFrequencyAndTieBreak(t *testing.T) {
	text := "Limits limits LIMITS! Derivatives, derivatives; integrals. " +
		"the and of a calculus series series"

	hints := ExtractSeoHints(text)

	want := []string{"limits", "derivatives", "series", "integrals", "calculus"}
	if !reflect.DeepEqual(hints.Tags, want) {
		t.Fatalf("tags = %v, want %v", hints.Tags, want)
	}
	if hints.Source != "heuristic" {
		t.Fatalf("source = %q", hints.Source)
	}
}

func TestExtractSeoHintsCapsAtEightTags(t *testing.T) {
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}
	hints := ExtractSeoHints(strings.Join(words, " ") + " juliet")

	if len(hints.Tags) != 8 {
		t.Fatalf("got %d tags, want 8", len(hints.Tags))
	}
	if hints.Tags[0] != "juliet" {
		t.Fatalf("most frequent token must lead, got %v", hints.Tags)
	}
	if hints.Tags[7] != "golf" {
		t.Fatalf("ties must keep first-seen order, got %v", hints.Tags)
	}
}

func TestExtractSeoHintsLengthCaps(t *testing.T) {
	text := "   " + strings.Repeat("word   spaced\n\ttext ", 30) + "   "
	hints := ExtractSeoHints(text)

	if utf8.RuneCountInString(hints.SEOTitle) != 60 {
		t.Fatalf("seo title has %d chars, want 60", utf8.RuneCountInString(hints.SEOTitle))
	}
	if !strings.HasPrefix(hints.SEOTitle, "word   spaced") {
		t.Fatalf("seo title must come from the trimmed text, got %q", hints.SEOTitle)
	}
	if n := utf8.RuneCountInString(hints.MetaDescription); n > 160 {
		t.Fatalf("meta description has %d chars", n)
	}
	if strings.Contains(hints.MetaDescription, "  ") || strings.ContainsAny(hints.MetaDescription, "\n\t") {
		t.Fatalf("meta description not collapsed: %q", hints.MetaDescription)
	}
}

func TestExtractSeoHintsDeterministic(t *testing.T) {
	text := "Vectors span spaces; bases span vectors. Matrices transform vectors and bases."
	first := ExtractSeoHints(text)
	for i := 0; i < 20; i++ {
		if got := ExtractSeoHints(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestExtractSeoHintsShortText(t *testing.T) {
	hints := ExtractSeoHints("a b c")
	if len(hints.Tags) != 0 {
		t.Fatalf("tokens under four characters must be dropped, got %v", hints.Tags)
	}
	if hints.SEOTitle != "a b c" || hints.MetaDescription != "a b c" {
		t.Fatalf("unexpected hints %+v", hints)
	}
}

type fakeSummarizer struct {
	err  error
	tags []string
}

func (f fakeSummarizer) JSONCompletion(_ context.Context, _, _ string, out interface{}) error {
	if f.err != nil {
		return f.err
	}
	dst := out.(*struct {
		Tags            []string `json:"tags"`
		SEOTitle        string   `json:"seo_title"`
		MetaDescription string   `json:"meta_description"`
	})
	dst.Tags = f.tags
	dst.SEOTitle = "Calculus notes"
	dst.MetaDescription = "Limits  and derivatives"
	return nil
}

func TestSuggestUsesAIWhenAvailable(t *testing.T) {
	svc := NewSEOService(fakeSummarizer{tags: []string{" Calculus ", "Limits"}}, nil)
	hints := svc.Suggest(context.Background(), "limits limits derivatives")

	if hints.Source != "ai" {
		t.Fatalf("source = %q, want ai", hints.Source)
	}
	if !reflect.DeepEqual(hints.Tags, []string{"calculus", "limits"}) {
		t.Fatalf("tags = %v", hints.Tags)
	}
	if hints.MetaDescription != "Limits and derivatives" {
		t.Fatalf("meta = %q", hints.MetaDescription)
	}
}

func TestSuggestFallsBackToHeuristic(t *testing.T) {
	text := "limits limits derivatives"
	want := ExtractSeoHints(text)

	for name, svc := range map[string]*SEOService{
		"no backend":   NewSEOService(nil, nil),
		"backend fail": NewSEOService(fakeSummarizer{err: errors.New("timeout")}, nil),
		"empty answer": NewSEOService(fakeSummarizer{}, nil),
	} {
		if got := svc.Suggest(context.Background(), text); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: got %+v, want %+v", name, got, want)
		}
	}
}
