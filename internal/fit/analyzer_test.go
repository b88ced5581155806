package fit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
)

type staticEntries []knowledge.Entry

func (s staticEntries) Load(ctx context.Context) []knowledge.Entry { return s }

type fakeCompleter struct {
	text   string
	err    error
	system string
	user   string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.text, f.err
}

func fixtureEntries() staticEntries {
	return staticEntries{
		{
			ID:                "ds",
			IntentKey:         "design_systems_work",
			CanonicalQuestion: "What is your design systems experience?",
			Tags:              []string{"design systems"},
			Answer:            "Jon built the Inditex design system.",
		},
		{
			ID:                "ux",
			IntentKey:         "ux_research_experience",
			CanonicalQuestion: "How do you approach user research?",
			QuestionVariants:  []string{"What research methods do you use in your projects?"},
			Answer:            "Interviews and usability testing.",
		},
	}
}

func TestAnalyzer_Score(t *testing.T) {
	a := NewAnalyzer(loadFixtureScores(t), nil, nil, nil, Config{})

	tests := []struct {
		name  string
		query string
		score int
		role  string
		hits  int
	}{
		{"query contains title", "Senior Product Designer", 92, "product_designer", 0},
		{"title contains query", "designer", 92, "product_designer", 0},
		{"later category", "Frontend Engineer at Acme", 55, "frontend", 0},
		{"no role, no keywords", "Fintech", 40, "", 0},
		{"keyword hits", "SaaS enterprise figma", 70, "", 3},
		{"keyword score is capped", "ux research design systems figma tools saas", 95, "", 8},
		{"empty query skips roles", "", 40, "", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, role, hits := a.Score(tc.query)
			assert.Equal(t, tc.score, score)
			assert.Equal(t, tc.hits, hits)
			if tc.role == "" {
				assert.Nil(t, role)
			} else {
				require.NotNil(t, role)
				assert.Equal(t, tc.role, role.Key)
			}
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score int
		title string
		desc  string
	}{
		{95, "Excellent fit!", "Jon's profile aligns almost perfectly."},
		{80, "Excellent fit!", "Jon's profile aligns almost perfectly."},
		{79, "Good fit!", "Jon covers many of the key needs."},
		{60, "Good fit!", "Jon covers many of the key needs."},
		{40, "Partial fit!", "A few overlaps, but not a strong fit."},
		{39, "Low fit!", "Jon's skills don't match this role."},
	}

	for _, tc := range tests {
		tier := TierFor(tc.score, "")
		assert.Equal(t, tc.title, tier.Title, "score %d", tc.score)
		assert.Equal(t, tc.desc, tier.Description, "score %d", tc.score)
	}
}

func TestAnalyzer_ExplanationLadder(t *testing.T) {
	ctx := context.Background()

	t.Run("direct", func(t *testing.T) {
		a := NewAnalyzer(NewScores(nil), fixtureEntries(), nil, nil, Config{})
		res := a.Analyze(ctx, "design systems")
		assert.Equal(t, SourceDirect, res.ExplanationSource)
		assert.Equal(t, "Jon built the Inditex design system.", res.Explanation)
		assert.Equal(t, 60, res.Score)
		assert.Equal(t, 2, res.KeywordHits)
		assert.Equal(t, "Good fit!", res.Title)
	})

	t.Run("intent returns the entry answer", func(t *testing.T) {
		a := NewAnalyzer(NewScores(nil), fixtureEntries(), nil, nil, Config{})
		res := a.Analyze(ctx, "what methods do you use in your work")
		assert.Equal(t, SourceIntent, res.ExplanationSource)
		assert.Equal(t, "Interviews and usability testing.", res.Explanation)
	})

	t.Run("completion", func(t *testing.T) {
		completer := &fakeCompleter{text: " A strong match for platform roles. "}
		a := NewAnalyzer(NewScores(nil), fixtureEntries(), completer, nil, Config{})
		res := a.Analyze(ctx, "Staff Platform Designer")
		assert.Equal(t, SourceCompletion, res.ExplanationSource)
		assert.Equal(t, "A strong match for platform roles.", res.Explanation)
		assert.Contains(t, completer.system, "You are Jon's AI assistant.")
		assert.Equal(t, "Staff Platform Designer", completer.user)
	})

	t.Run("completion failure uses default", func(t *testing.T) {
		completer := &fakeCompleter{err: errors.New("quota")}
		a := NewAnalyzer(NewScores(nil), fixtureEntries(), completer, nil, Config{})
		res := a.Analyze(ctx, "Staff Platform Designer")
		assert.Equal(t, SourceDefault, res.ExplanationSource)
		assert.Equal(t, defaultExplanation("Jon"), res.Explanation)
	})

	t.Run("no knowledge", func(t *testing.T) {
		a := NewAnalyzer(loadFixtureScores(t), nil, nil, nil, Config{SubjectName: "Ana"})
		res := a.Analyze(ctx, "Product Designer")
		assert.Equal(t, 92, res.Score)
		assert.Equal(t, "Ana's profile aligns almost perfectly.", res.Description)
		assert.Equal(t, SourceDefault, res.ExplanationSource)
		assert.Contains(t, res.Explanation, "Ana has worked as a Senior Product Designer")
	})
}
