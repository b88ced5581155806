package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/matching"
	"github.com/spherical-ai/profile-assistant/internal/resolver"
)

func TestLoadEvalCases(t *testing.T) {
	cases, err := loadEvalCases("testdata/eval.yaml")
	require.NoError(t, err)
	require.Len(t, cases, 3)
	assert.Equal(t, EvalCase{Question: "Tell me about design systems", Stage: "keyword", Intent: "design_systems_experience"}, cases[0])
	assert.Empty(t, cases[2].Stage)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "cases.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"question": "hi", "stage": "fallback"}]`), 0o600))
	cases, err = loadEvalCases(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []EvalCase{{Question: "hi", Stage: "fallback"}}, cases)

	blank := filepath.Join(dir, "blank.yaml")
	require.NoError(t, os.WriteFile(blank, []byte("- stage: keyword\n"), 0o600))
	_, err = loadEvalCases(blank)
	assert.Error(t, err)

	_, err = loadEvalCases(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRunEval(t *testing.T) {
	resolve := func(ctx context.Context, q string) resolver.Resolution {
		switch q {
		case "design":
			return resolver.Resolution{Answer: "a", Stage: resolver.StageKeyword, IntentKey: "design_systems_experience", Elapsed: 3 * time.Millisecond}
		case "weather":
			return resolver.Resolution{Answer: "b", Stage: resolver.StageOutOfScope}
		default:
			return resolver.Resolution{Answer: "c", Stage: resolver.StageFallback}
		}
	}

	cases := []EvalCase{
		{Question: "design", Stage: "keyword", Intent: "design_systems_experience"},
		{Question: "design", Intent: "other_intent"},
		{Question: "weather", Stage: "out_of_scope"},
		{Question: "anything"},
		{Question: "anything", Stage: "direct"},
	}

	var done atomic.Int32
	report, err := runEval(context.Background(), resolve, cases, 2, func() { done.Add(1) })
	require.NoError(t, err)

	assert.EqualValues(t, len(cases), done.Load())
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Passed)
	assert.Equal(t, 2, report.Failed)

	passed := make([]bool, len(report.Results))
	for i, r := range report.Results {
		passed[i] = r.Passed
		assert.Equal(t, cases[i], r.EvalCase, "results keep input order")
	}
	assert.Equal(t, []bool{true, false, true, true, false}, passed)
	assert.EqualValues(t, 3, report.Results[0].LatencyMs)
}

func TestRunEval_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runEval(ctx, func(context.Context, string) resolver.Resolution {
		return resolver.Resolution{}
	}, []EvalCase{{Question: "q"}}, 1, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProbeSources(t *testing.T) {
	sources := []knowledge.Source{
		knowledge.NewFileSource("testdata/missing.json"),
		knowledge.NewFileSource("../../internal/knowledge/testdata/kb.json"),
	}

	var started []string
	results := probeSources(context.Background(), sources, func(name string) func() {
		started = append(started, name)
		return func() {}
	})

	require.Len(t, results, 2)
	assert.Equal(t, []string{"testdata/missing.json", "../../internal/knowledge/testdata/kb.json"}, started)
	assert.NotEmpty(t, results[0].Error)
	assert.Zero(t, results[0].Entries)
	assert.Empty(t, results[1].Error)
	assert.Equal(t, 3, results[1].Entries)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abcd…", truncateText("abcdefgh", 5))
}

func TestKeywordRows(t *testing.T) {
	m := matching.NewKeywordMatcher()

	all := keywordRows(m, "")
	require.Len(t, all, len(matching.DefaultKeywordTable))
	assert.Equal(t, matching.DefaultKeywordTable[0].Keyword, all[0].Keyword)
	for _, r := range all {
		assert.False(t, r.Hit)
	}

	query := "  SaaS enterprise Figma  "
	hits := 0
	for _, r := range keywordRows(m, query) {
		if r.Hit {
			hits++
			assert.Contains(t, strings.ToLower(query), r.Keyword)
		}
	}
	assert.Equal(t, m.CountHits(query), hits)
	assert.Positive(t, hits)
}
