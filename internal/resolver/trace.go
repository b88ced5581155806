package resolver

import (
	"context"
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/matching"
)

// Trace reports every matcher's verdict for a question. It is built without
// calling the completion service.
type Trace struct {
	Query           string             `json:"query"`
	Normalized      string             `json:"normalized"`
	KnowledgeLoaded bool               `json:"knowledgeLoaded"`
	Entries         int                `json:"entries"`
	Keyword         *KeywordVerdict    `json:"keyword,omitempty"`
	Direct          *DirectVerdict     `json:"direct,omitempty"`
	Intent          *IntentVerdict     `json:"intent,omitempty"`
	Snippets        []matching.Snippet `json:"snippets,omitempty"`
	CompletionReady bool               `json:"completionReady"`
	Topic           string             `json:"topic,omitempty"`
	OutOfScope      bool               `json:"outOfScope"`
	// Stage is where Resolve would stop, assuming the completion service
	// answers whenever it is configured.
	Stage Stage `json:"stage"`
}

// KeywordVerdict is the keyword stage outcome.
type KeywordVerdict struct {
	IntentKey string `json:"intentKey"`
	EntryID   string `json:"entryId,omitempty"`
	Usable    bool   `json:"usable"`
}

// DirectVerdict is the best direct match, accepted or not.
type DirectVerdict struct {
	EntryID       string   `json:"entryId"`
	IntentKey     string   `json:"intentKey"`
	Score         int      `json:"score"`
	MinScore      int      `json:"minScore"`
	MatchedFields []string `json:"matchedFields"`
	Usable        bool     `json:"usable"`
}

// IntentVerdict is the intent stage outcome.
type IntentVerdict struct {
	IntentKey string              `json:"intentKey"`
	Rule      matching.IntentRule `json:"rule"`
	Matched   string              `json:"matched"`
	EntryID   string              `json:"entryId,omitempty"`
	Usable    bool                `json:"usable"`
}

// Explain evaluates every stage for question and reports the verdicts.
func (r *Resolver) Explain(ctx context.Context, question string) Trace {
	entries := r.store.Load(ctx)

	t := Trace{
		Query:           question,
		Normalized:      matching.NormalizeQuery(question),
		KnowledgeLoaded: r.store.IsLoaded(),
		Entries:         len(entries),
		CompletionReady: r.completer != nil,
	}

	if intent, ok := r.keywords.Match(question); ok {
		v := &KeywordVerdict{IntentKey: intent}
		if e, found := knowledge.FindByIntent(entries, intent); found {
			v.EntryID = e.ID
			v.Usable = e.HasAnswer()
		}
		t.Keyword = v
	}

	if best, ok := r.direct.Best(entries, question); ok {
		t.Direct = &DirectVerdict{
			EntryID:       best.Entry.ID,
			IntentKey:     best.Entry.IntentKey,
			Score:         best.Score,
			MinScore:      r.direct.MinScore(),
			MatchedFields: best.MatchedFields,
			Usable:        best.Score >= r.direct.MinScore() && best.Entry.HasAnswer(),
		}
	}

	if im, ok := r.intents.Detect(entries, question); ok {
		v := &IntentVerdict{IntentKey: im.IntentKey, Rule: im.Rule, Matched: im.Matched}
		if e, found := knowledge.FindByIntent(entries, im.IntentKey); found {
			v.EntryID = e.ID
			v.Usable = e.HasAnswer()
		}
		t.Intent = v
	}

	if strings.TrimSpace(question) != "" {
		t.Snippets = matching.RankSnippets(entries, question, r.config.GroundingSnippets)
	}

	if topic, ok := r.fallbacks.Topic(question); ok {
		t.Topic = topic.Name
	}
	t.OutOfScope = r.fallbacks.OutOfScope(question)

	switch {
	case t.Keyword != nil && t.Keyword.Usable:
		t.Stage = StageKeyword
	case t.Direct != nil && t.Direct.Usable:
		t.Stage = StageDirect
	case t.Intent != nil && t.Intent.Usable:
		t.Stage = StageIntent
	case t.CompletionReady && strings.TrimSpace(question) != "":
		t.Stage = StageCompletion
	case t.Topic != "":
		t.Stage = StageTopic
	case t.OutOfScope:
		t.Stage = StageOutOfScope
	default:
		t.Stage = StageFallback
	}

	return t
}
