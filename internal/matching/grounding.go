package matching

import (
	"sort"
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
)

// Relevance weights for grounding snippets. Unlike direct matching these
// accumulate per occurrence.
const (
	RelevanceVariant = 10
	RelevanceTag     = 5
	RelevanceAnswer  = 3
)

// Snippet is a knowledge entry selected to ground a completion prompt.
type Snippet struct {
	ID        string `json:"id"`
	IntentKey string `json:"intent"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Relevance int    `json:"relevance"`
}

// RankSnippets returns up to limit entries relevant to query, most relevant
// first. Equal relevance keeps document order.
func RankSnippets(entries []knowledge.Entry, query string, limit int) []Snippet {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	var snippets []Snippet
	for _, e := range entries {
		relevance := 0

		for _, variant := range e.QuestionVariants {
			v := strings.ToLower(variant)
			if v != "" && containsEither(v, q) {
				relevance += RelevanceVariant
			}
		}
		for _, tag := range e.Tags {
			t := strings.ToLower(tag)
			if t != "" && strings.Contains(q, t) {
				relevance += RelevanceTag
			}
		}
		if strings.Contains(strings.ToLower(e.Answer), q) {
			relevance += RelevanceAnswer
		}

		if relevance > 0 {
			snippets = append(snippets, Snippet{
				ID:        e.ID,
				IntentKey: e.IntentKey,
				Question:  e.CanonicalQuestion,
				Answer:    e.Answer,
				Relevance: relevance,
			})
		}
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Relevance > snippets[j].Relevance
	})

	if len(snippets) > limit {
		snippets = snippets[:limit]
	}
	return snippets
}
