package fit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spherical-ai/profile-assistant/internal/completion"
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/matching"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// Keyword scoring bounds for roles missing from the scores document.
const (
	baseScore       = 40
	pointsPerHit    = 10
	minKeywordScore = 40
	maxKeywordScore = 95
)

// Explanation sources reported in Result.
const (
	SourceDirect     = "direct"
	SourceIntent     = "intent"
	SourceCompletion = "completion"
	SourceDefault    = "default"
)

// EntrySource supplies knowledge entries.
type EntrySource interface {
	Load(ctx context.Context) []knowledge.Entry
}

// Tier is the headline shown for a score.
type Tier struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TierFor maps a score to its tier.
func TierFor(score int, subject string) Tier {
	if subject == "" {
		subject = completion.DefaultSubject
	}
	switch {
	case score >= 80:
		return Tier{"Excellent fit!", subject + "'s profile aligns almost perfectly."}
	case score >= 60:
		return Tier{"Good fit!", subject + " covers many of the key needs."}
	case score >= 40:
		return Tier{"Partial fit!", "A few overlaps, but not a strong fit."}
	default:
		return Tier{"Low fit!", subject + "'s skills don't match this role."}
	}
}

// Result is a scored and explained fit query.
type Result struct {
	Query             string `json:"query"`
	Score             int    `json:"score"`
	Role              *Role  `json:"role,omitempty"`
	KeywordHits       int    `json:"keywordHits"`
	Explanation       string `json:"explanation"`
	ExplanationSource string `json:"explanationSource"`
	Tier
}

// Config configures an Analyzer.
type Config struct {
	SubjectName       string
	MinDirectScore    int
	MinSharedWords    int
	CompletionTimeout time.Duration
}

// Analyzer scores role fit and explains it from the knowledge base.
type Analyzer struct {
	scores    *Scores
	store     EntrySource
	keywords  *matching.KeywordMatcher
	direct    *matching.DirectMatcher
	intents   *matching.IntentDetector
	completer completion.Completer
	logger    *observability.Logger
	config    Config
}

// NewAnalyzer creates an analyzer. completer may be nil.
func NewAnalyzer(scores *Scores, store EntrySource, completer completion.Completer, logger *observability.Logger, cfg Config) *Analyzer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.SubjectName == "" {
		cfg.SubjectName = completion.DefaultSubject
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = 10 * time.Second
	}
	return &Analyzer{
		scores:    scores,
		store:     store,
		keywords:  matching.NewKeywordMatcher(),
		direct:    matching.NewDirectMatcher(cfg.MinDirectScore),
		intents:   matching.NewIntentDetector(cfg.MinSharedWords),
		completer: completer,
		logger:    logger.WithComponent("fit"),
		config:    cfg,
	}
}

// Score returns the fit score for query: the first role whose title
// contains or is contained in the query, otherwise 40 plus 10 per keyword
// phrase found, capped to 40..95.
func (a *Analyzer) Score(query string) (int, *Role, int) {
	q := strings.ToLower(strings.TrimSpace(query))

	if q != "" {
		for _, role := range a.scores.Roles() {
			title := strings.ToLower(strings.TrimSpace(role.Title))
			if title == "" {
				continue
			}
			if strings.Contains(q, title) || strings.Contains(title, q) {
				r := role
				return r.Score, &r, 0
			}
		}
	}

	hits := a.keywords.CountHits(q)
	return clamp(baseScore+pointsPerHit*hits, minKeywordScore, maxKeywordScore), nil, hits
}

// Analyze scores query and explains the fit.
func (a *Analyzer) Analyze(ctx context.Context, query string) Result {
	score, role, hits := a.Score(query)
	explanation, source := a.explain(ctx, query)

	a.logger.WithContext(ctx).Debug().
		Question(query).
		Int("score", score).
		Int("keyword_hits", hits).
		Str("explanation_source", source).
		Msg("Fit analyzed")

	return Result{
		Query:             query,
		Score:             score,
		Tier:              TierFor(score, a.config.SubjectName),
		Role:              role,
		KeywordHits:       hits,
		Explanation:       explanation,
		ExplanationSource: source,
	}
}

func (a *Analyzer) explain(ctx context.Context, query string) (string, string) {
	var entries []knowledge.Entry
	if a.store != nil {
		entries = a.store.Load(ctx)
	}

	if m, ok := a.direct.Match(entries, query); ok && m.Entry.HasAnswer() {
		return m.Entry.Answer, SourceDirect
	}

	if im, ok := a.intents.Detect(entries, query); ok {
		if e, found := knowledge.FindByIntent(entries, im.IntentKey); found && e.HasAnswer() {
			return e.Answer, SourceIntent
		}
	}

	if a.completer != nil && strings.TrimSpace(query) != "" {
		callCtx, cancel := context.WithTimeout(ctx, a.config.CompletionTimeout)
		defer cancel()

		text, err := a.completer.Complete(callCtx, completion.FitSystemPrompt(a.config.SubjectName), query)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), SourceCompletion
		}
		if err != nil {
			a.logger.WithContext(ctx).Warn().Err(err).Msg("Fit completion failed, using default explanation")
		}
	}

	return defaultExplanation(a.config.SubjectName), SourceDefault
}

func defaultExplanation(subject string) string {
	return fmt.Sprintf("I can help you understand %[1]s's experience and how it relates to this role. "+
		"%[1]s has worked as a Senior Product Designer with expertise in UX/UI design, design systems, "+
		"and enterprise platforms. Would you like to know more about his specific skills or projects?", subject)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
