package services

import (
	"context"
	"strings"

	"github.com/sahilchouksey/scholarhub/utils/logger"
)

const (
	seoMaxTags        = 8
	seoMinTokenLength = 4
	seoTitleLength    = 60
	seoMetaLength     = 160
	seoPromptLimit    = 6000
)

// SeoHints are the tags, title and meta description suggested for a lesson
type SeoHints struct {
	Tags            []string `json:"tags"`
	SEOTitle        string   `json:"seo_title"`
	MetaDescription string   `json:"meta_description"`
	Source          string   `json:"source"` // "ai" or "heuristic"
}

// Summarizer is the optional AI backend. *digitalocean.InferenceClient
// satisfies it.
type Summarizer interface {
	JSONCompletion(ctx context.Context, systemPrompt, userPrompt string, out interface{}) error
}

// SEOService suggests SEO metadata for lesson text
type SEOService struct {
	ai  Summarizer
	log *logger.Logger
}

// NewSEOService creates a new SEO service. A nil ai always uses the
// word-frequency heuristic.
func NewSEOService(ai Summarizer, log *logger.Logger) *SEOService {
	if log == nil {
		log = logger.Nop()
	}
	return &SEOService{ai: ai, log: log}
}

// Suggest asks the AI backend when configured and falls back to
// ExtractSeoHints when it is absent, fails or answers with nothing usable.
func (s *SEOService) Suggest(ctx context.Context, text string) SeoHints {
	if s.ai == nil || strings.TrimSpace(text) == "" {
		return ExtractSeoHints(text)
	}

	var out struct {
		Tags            []string `json:"tags"`
		SEOTitle        string   `json:"seo_title"`
		MetaDescription string   `json:"meta_description"`
	}
	err := s.ai.JSONCompletion(ctx,
		"You write SEO metadata for university lesson notes. Return an object with "+
			"\"tags\" (up to 8 lowercase keywords), \"seo_title\" (max 60 characters) and "+
			"\"meta_description\" (max 160 characters).",
		truncateRunes(text, seoPromptLimit),
		&out,
	)
	if err != nil {
		s.log.Warn("seo summarization failed, using heuristic", "error", err)
		return ExtractSeoHints(text)
	}

	tags := make([]string, 0, seoMaxTags)
	for _, tag := range out.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && len(tags) < seoMaxTags {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 || strings.TrimSpace(out.SEOTitle) == "" {
		s.log.Warn("seo summarization returned no usable hints, using heuristic")
		return ExtractSeoHints(text)
	}

	return SeoHints{
		Tags:            tags,
		SEOTitle:        truncateRunes(strings.TrimSpace(out.SEOTitle), seoTitleLength),
		MetaDescription: strings.TrimSpace(truncateRunes(collapseSpaces(out.MetaDescription), seoMetaLength)),
		Source:          "ai",
	}
}

// ExtractSeoHints is the word-frequency placeholder used without an AI
// backend. Its rules are fixed and asserted by tests:
//   - tags: lowercase, drop everything but [a-z0-9] and whitespace, split on
//     whitespace, drop tokens shorter than 4, keep the 8 most frequent with
//     ties in first-seen order
//   - seo title: first 60 characters of the trimmed text
//   - meta description: first 160 characters of the whitespace-collapsed text
func ExtractSeoHints(text string) SeoHints {
	return SeoHints{
		Tags:            topTokens(text),
		SEOTitle:        truncateRunes(strings.TrimSpace(text), seoTitleLength),
		MetaDescription: strings.TrimSpace(truncateRunes(collapseSpaces(text), seoMetaLength)),
		Source:          "heuristic",
	}
}

func topTokens(text string) []string {
	var cleaned strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			cleaned.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
			cleaned.WriteRune(' ')
		}
	}

	counts := make(map[string]int)
	var order []string
	for _, token := range strings.Fields(cleaned.String()) {
		if len(token) < seoMinTokenLength {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	// Stable selection: a later token only displaces an earlier one with a
	// strictly higher count.
	tags := make([]string, 0, seoMaxTags)
	used := make(map[string]bool, seoMaxTags)
	for len(tags) < seoMaxTags && len(tags) < len(order) {
		best := ""
		for _, token := range order {
			if used[token] {
				continue
			}
			if best == "" || counts[token] > counts[best] {
				best = token
			}
		}
		used[best] = true
		tags = append(tags, best)
	}
	return tags
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
