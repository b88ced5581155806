package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
)

func TestDirectMatcher_DesignSystemsScenario(t *testing.T) {
	m := NewDirectMatcher(MinDirectScore)

	result, ok := m.Match(fixtureEntries(), "design systems")
	require.True(t, ok)

	assert.Equal(t, "ds-1", result.Entry.ID)
	assert.GreaterOrEqual(t, result.Score, WeightCanonical+WeightTag)
	assert.Equal(t, []string{FieldCanonical, FieldTags, FieldAnswer}, result.MatchedFields)
}

func TestDirectMatcher_CanonicalEquality(t *testing.T) {
	m := NewDirectMatcher(0)

	for _, e := range fixtureEntries() {
		t.Run(e.ID, func(t *testing.T) {
			result, ok := m.Match(fixtureEntries(), e.CanonicalQuestion)
			require.True(t, ok)
			assert.Equal(t, e.ID, result.Entry.ID)
			assert.GreaterOrEqual(t, result.Score, WeightCanonical)
		})
	}
}

func TestDirectMatcher_Threshold(t *testing.T) {
	m := NewDirectMatcher(MinDirectScore)
	entries := fixtureEntries()

	tests := []struct {
		name    string
		query   string
		score   int
		matched bool
	}{
		{"industry alone qualifies", "fintech", WeightIndustry, true},
		{"answer alone does not", "journey mapping", WeightAnswerText, false},
		{"unrelated", "weather today", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best, _ := m.Best(entries, tc.query)
			assert.Equal(t, tc.score, best.Score)

			_, ok := m.Match(entries, tc.query)
			assert.Equal(t, tc.matched, ok)
		})
	}
}

func TestDirectMatcher_NeverBelowThreshold(t *testing.T) {
	m := NewDirectMatcher(MinDirectScore)
	queries := []string{
		"design", "systems", "tokens", "fashion", "saas", "zara", "interviews",
		"usability testing", "com-b", "what", "a", "e", "How do you approach user research?",
	}

	for _, q := range queries {
		if result, ok := m.Match(fixtureEntries(), q); ok {
			assert.GreaterOrEqual(t, result.Score, MinDirectScore, "query %q", q)
		}
	}
}

func TestDirectMatcher_TiesKeepEarliest(t *testing.T) {
	entries := []knowledge.Entry{
		{ID: "first", Tags: []string{"figma"}, Answer: "Used daily."},
		{ID: "second", Tags: []string{"figma"}, Answer: "Used daily."},
	}

	result, ok := NewDirectMatcher(MinDirectScore).Match(entries, "figma")
	require.True(t, ok)
	assert.Equal(t, "first", result.Entry.ID)
}

func TestDirectMatcher_BehaviouralSpelling(t *testing.T) {
	result, ok := NewDirectMatcher(MinDirectScore).Match(fixtureEntries(), "Behavioural science")
	require.True(t, ok)
	assert.Equal(t, "bd-1", result.Entry.ID)
}

func TestDirectMatcher_EmptyInputs(t *testing.T) {
	m := NewDirectMatcher(MinDirectScore)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, ok := m.Match(fixtureEntries(), q)
		assert.False(t, ok, "query %q", q)
	}

	_, ok := m.Match(nil, "design systems")
	assert.False(t, ok)

	blank := []knowledge.Entry{{ID: "blank", Tags: []string{""}, QuestionVariants: []string{"  "}}}
	_, ok = m.Best(blank, "anything")
	assert.False(t, ok, "empty field values never match")
}
