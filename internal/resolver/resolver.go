// Package resolver turns a free-text question into an answer by walking a
// fixed ladder of matchers and canned fallbacks.
package resolver

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

// Stage identifies the ladder step that produced an answer.
type Stage string

const (
	StageKeyword    Stage = "keyword"
	StageDirect     Stage = "direct"
	StageIntent     Stage = "intent"
	StageCompletion Stage = "completion"
	StageTopic      Stage = "topic"
	StageOutOfScope Stage = "out_of_scope"
	StageFallback   Stage = "fallback"
	StageError      Stage = "error"
)

// Number returns the 1-based ladder position, or 0 for StageError.
func (s Stage) Number() int {
	switch s {
	case StageKeyword:
		return 1
	case StageDirect:
		return 2
	case StageIntent:
		return 3
	case StageCompletion:
		return 4
	case StageTopic:
		return 5
	case StageOutOfScope:
		return 6
	case StageFallback:
		return 7
	default:
		return 0
	}
}

// EntryStore is the read side of the knowledge store.
type EntryStore interface {
	Load(ctx context.Context) []knowledge.Entry
	IsLoaded() bool
}

// Config holds resolver thresholds.
type Config struct {
	SubjectName       string
	MinDirectScore    int
	MinSharedWords    int
	GroundingSnippets int
	CompletionTimeout time.Duration
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		SubjectName:       completion.DefaultSubject,
		MinDirectScore:    matching.MinDirectScore,
		MinSharedWords:    matching.MinSharedWords,
		GroundingSnippets: matching.GroundingSnippets,
		CompletionTimeout: 10 * time.Second,
	}
}

// Resolution is the outcome of one question.
type Resolution struct {
	Answer        string        `json:"answer"`
	Stage         Stage         `json:"stage"`
	IntentKey     string        `json:"intentKey,omitempty"`
	EntryID       string        `json:"entryId,omitempty"`
	Score         int           `json:"score,omitempty"`
	MatchedFields []string      `json:"matchedFields,omitempty"`
	Topic         string        `json:"topic,omitempty"`
	Elapsed       time.Duration `json:"-"`
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCompleter enables the completion stage. Without it the stage is skipped.
func WithCompleter(c completion.Completer) Option {
	return func(r *Resolver) { r.completer = c }
}

// WithCompletionCache reuses completion answers across identical prompts.
func WithCompletionCache(c *CompletionCache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithMessages overrides the canned messages. Blank fields keep defaults.
func WithMessages(m SystemMessages) Option {
	return func(r *Resolver) { r.messages = m.withDefaults() }
}

// WithFallbacks overrides the topic and scope rules.
func WithFallbacks(cfg FallbackConfig) Option {
	return func(r *Resolver) { r.fallbacks = NewFallbackHandler(cfg) }
}

// WithKeywordMatcher overrides the keyword table.
func WithKeywordMatcher(m *matching.KeywordMatcher) Option {
	return func(r *Resolver) { r.keywords = m }
}

// Resolver walks the answer ladder.
type Resolver struct {
	store     EntryStore
	keywords  *matching.KeywordMatcher
	direct    *matching.DirectMatcher
	intents   *matching.IntentDetector
	completer completion.Completer
	cache     *CompletionCache
	fallbacks *FallbackHandler
	messages  SystemMessages
	logger    *observability.Logger
	config    Config
}

// New creates a resolver over store.
func New(store EntryStore, logger *observability.Logger, cfg Config, opts ...Option) *Resolver {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.SubjectName == "" {
		cfg.SubjectName = completion.DefaultSubject
	}
	if cfg.GroundingSnippets <= 0 {
		cfg.GroundingSnippets = matching.GroundingSnippets
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = 10 * time.Second
	}

	r := &Resolver{
		store:     store,
		keywords:  matching.NewKeywordMatcher(),
		direct:    matching.NewDirectMatcher(cfg.MinDirectScore),
		intents:   matching.NewIntentDetector(cfg.MinSharedWords),
		fallbacks: NewFallbackHandler(DefaultFallbackConfig()),
		messages:  DefaultSystemMessages(),
		logger:    logger.WithComponent("resolver"),
		config:    cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Messages returns the canned messages in use.
func (r *Resolver) Messages() SystemMessages {
	return r.messages
}

// CompletionEnabled reports whether the completion stage is available.
func (r *Resolver) CompletionEnabled() bool {
	return r.completer != nil
}

// Answer returns the answer text for question. It never fails.
func (r *Resolver) Answer(ctx context.Context, question string) string {
	return r.Resolve(ctx, question).Answer
}

// Resolve walks the ladder and reports which stage answered.
func (r *Resolver) Resolve(ctx context.Context, question string) (res Resolution) {
	start := time.Now()
	logger := r.logger.WithContext(ctx)

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Str("panic", fmt.Sprint(p)).Msg("Resolver panicked, returning error message")
			res = Resolution{Answer: r.messages.ErrorMessage, Stage: StageError}
		}
		res.Elapsed = time.Since(start)
		observability.RecordResolution(string(res.Stage), res.Elapsed)
		logger.Debug().
			Question(question).
			Str("stage", string(res.Stage)).
			Str("intent", res.IntentKey).
			Dur("elapsed", res.Elapsed).
			Msg("Question resolved")
	}()

	entries := r.store.Load(ctx)

	if intent, ok := r.keywords.Match(question); ok {
		if e, found := knowledge.FindByIntent(entries, intent); found && e.HasAnswer() {
			return Resolution{Answer: e.Answer, Stage: StageKeyword, IntentKey: intent, EntryID: e.ID}
		}
		logger.Debug().Str("intent", intent).Msg("Keyword intent has no usable entry")
	}

	if m, ok := r.direct.Match(entries, question); ok {
		if m.Entry.HasAnswer() {
			return Resolution{
				Answer:        m.Entry.Answer,
				Stage:         StageDirect,
				IntentKey:     m.Entry.IntentKey,
				EntryID:       m.Entry.ID,
				Score:         m.Score,
				MatchedFields: m.MatchedFields,
			}
		}
		logger.Debug().Str("entry_id", m.Entry.ID).Int("score", m.Score).Msg("Direct match has no answer")
	}

	if im, ok := r.intents.Detect(entries, question); ok {
		if e, found := knowledge.FindByIntent(entries, im.IntentKey); found && e.HasAnswer() {
			return Resolution{Answer: e.Answer, Stage: StageIntent, IntentKey: im.IntentKey, EntryID: e.ID}
		}
		logger.Debug().Str("intent", im.IntentKey).Msg("Detected intent has no usable entry")
	}

	if text, ok := r.complete(ctx, entries, question); ok {
		return Resolution{Answer: text, Stage: StageCompletion}
	}

	if topic, ok := r.fallbacks.Topic(question); ok {
		return Resolution{Answer: topic.Response, Stage: StageTopic, Topic: topic.Name}
	}

	if r.fallbacks.OutOfScope(question) {
		return Resolution{Answer: r.messages.OutOfScope, Stage: StageOutOfScope}
	}

	return Resolution{Answer: r.messages.GeneralFallback, Stage: StageFallback}
}

// complete runs the completion stage. Failures are logged and reported as
// no answer.
func (r *Resolver) complete(ctx context.Context, entries []knowledge.Entry, question string) (string, bool) {
	if r.completer == nil || strings.TrimSpace(question) == "" {
		return "", false
	}

	snippets := matching.RankSnippets(entries, question, r.config.GroundingSnippets)
	prompt := completion.GroundedPrompt(question, r.config.SubjectName, snippets)

	if text, ok := r.cache.Get(ctx, prompt); ok {
		return text, true
	}

	callCtx, cancel := context.WithTimeout(ctx, r.config.CompletionTimeout)
	defer cancel()

	text, err := r.completer.Complete(callCtx, "", prompt)
	if err != nil {
		r.logger.WithContext(ctx).Warn().
			Err(err).
			Int("snippets", len(snippets)).
			Msg("Completion fallback failed, continuing")
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	r.cache.Set(ctx, prompt, text)
	return text, true
}
