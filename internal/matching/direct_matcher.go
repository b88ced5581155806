package matching

import (
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
)

// Matcher thresholds. The values were tuned by hand against the profile
// knowledge base and have no derivation beyond that.
const (
	// MinDirectScore is the lowest score DirectMatcher accepts.
	MinDirectScore = 5
	// MinSharedWords is the word overlap at which a variant counts as an intent hit.
	MinSharedWords = 3
	// GroundingSnippets is how many entries ground a completion prompt.
	GroundingSnippets = 3
)

// Field weights for direct matching. Each field contributes once.
const (
	WeightCanonical  = 10
	WeightVariant    = 8
	WeightTag        = 6
	WeightIndustry   = 5
	WeightAnswerText = 4
)

// Matched field names reported in MatchResult.
const (
	FieldCanonical  = "canonical_question"
	FieldVariants   = "question_variants"
	FieldTags       = "tags"
	FieldIndustries = "industries"
	FieldAnswer     = "answer_content"
)

// MatchResult is the best direct match for a query.
type MatchResult struct {
	Entry         knowledge.Entry
	Score         int
	MatchedFields []string
}

// DirectMatcher scores every entry by weighted substring hits and keeps the best.
type DirectMatcher struct {
	minScore int
}

// NewDirectMatcher creates a matcher. A non-positive minScore uses MinDirectScore.
func NewDirectMatcher(minScore int) *DirectMatcher {
	if minScore <= 0 {
		minScore = MinDirectScore
	}
	return &DirectMatcher{minScore: minScore}
}

// MinScore returns the acceptance threshold.
func (m *DirectMatcher) MinScore() int {
	return m.minScore
}

// Match returns the highest scoring entry if it reaches the threshold.
func (m *DirectMatcher) Match(entries []knowledge.Entry, query string) (MatchResult, bool) {
	best, ok := m.Best(entries, query)
	if !ok || best.Score < m.minScore {
		return MatchResult{}, false
	}
	return best, true
}

// Best returns the highest scoring entry regardless of the threshold. Ties
// keep the earliest entry. Entries scoring zero are never returned.
func (m *DirectMatcher) Best(entries []knowledge.Entry, query string) (MatchResult, bool) {
	q := NormalizeQuery(query)
	if q == "" {
		return MatchResult{}, false
	}

	var (
		best  MatchResult
		found bool
	)
	for _, e := range entries {
		score, fields := ScoreEntry(e, q)
		if score > best.Score {
			best = MatchResult{Entry: e, Score: score, MatchedFields: fields}
			found = true
		}
	}
	return best, found
}

// ScoreEntry scores one entry against an already normalized query.
func ScoreEntry(e knowledge.Entry, q string) (int, []string) {
	score := 0
	var fields []string

	if fieldHit(q, e.CanonicalQuestion) {
		score += WeightCanonical
		fields = append(fields, FieldCanonical)
	}
	if anyFieldHit(q, e.QuestionVariants) {
		score += WeightVariant
		fields = append(fields, FieldVariants)
	}
	if anyFieldHit(q, e.Tags) {
		score += WeightTag
		fields = append(fields, FieldTags)
	}
	if anyFieldHit(q, e.Industries) {
		score += WeightIndustry
		fields = append(fields, FieldIndustries)
	}
	if fieldHit(q, e.Answer) {
		score += WeightAnswerText
		fields = append(fields, FieldAnswer)
	}

	return score, fields
}

func fieldHit(q, value string) bool {
	v := NormalizeQuery(value)
	if v == "" {
		return false
	}
	return containsEither(q, v)
}

func anyFieldHit(q string, values []string) bool {
	for _, v := range values {
		if fieldHit(q, v) {
			return true
		}
	}
	return false
}
