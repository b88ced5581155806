package matching

import (
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
)

// IntentRule names the rule that detected an intent.
type IntentRule string

const (
	RuleVariantExact    IntentRule = "variant_exact"
	RuleVariantContains IntentRule = "variant_contains"
	RuleVariantWords    IntentRule = "variant_words"
	RuleCanonical       IntentRule = "canonical_question"
	RuleTag             IntentRule = "tag"
	RuleIntentKey       IntentRule = "intent_key"
)

// IntentMatch is a detected intent and the entry that produced it.
type IntentMatch struct {
	IntentKey string
	EntryID   string
	Rule      IntentRule
	Matched   string
}

// IntentDetector is a looser matcher than DirectMatcher: punctuation is
// ignored and a variant can match on word overlap alone.
type IntentDetector struct {
	minSharedWords int
}

// NewIntentDetector creates a detector. A non-positive minSharedWords uses MinSharedWords.
func NewIntentDetector(minSharedWords int) *IntentDetector {
	if minSharedWords <= 0 {
		minSharedWords = MinSharedWords
	}
	return &IntentDetector{minSharedWords: minSharedWords}
}

// Detect returns the intent of the first entry, in order, that satisfies any rule.
func (d *IntentDetector) Detect(entries []knowledge.Entry, query string) (IntentMatch, bool) {
	raw := NormalizeQuery(query)
	clean := StripPunctuation(raw)
	if clean == "" {
		return IntentMatch{}, false
	}

	for _, e := range entries {
		rule, matched, ok := d.matchEntry(e, raw, clean)
		if !ok {
			continue
		}
		return IntentMatch{IntentKey: e.IntentKey, EntryID: e.ID, Rule: rule, Matched: matched}, true
	}
	return IntentMatch{}, false
}

func (d *IntentDetector) matchEntry(e knowledge.Entry, raw, clean string) (IntentRule, string, bool) {
	for _, variant := range e.QuestionVariants {
		v := StripPunctuation(strings.ToLower(variant))
		if v == "" {
			continue
		}
		if v == clean {
			return RuleVariantExact, variant, true
		}
		if containsEither(v, clean) {
			return RuleVariantContains, variant, true
		}
		if sharedWords(v, clean) >= d.minSharedWords {
			return RuleVariantWords, variant, true
		}
	}

	if c := StripPunctuation(strings.ToLower(e.CanonicalQuestion)); c != "" && containsEither(c, clean) {
		return RuleCanonical, e.CanonicalQuestion, true
	}

	for _, tag := range e.Tags {
		t := strings.ToLower(tag)
		if t != "" && strings.Contains(raw, t) {
			return RuleTag, tag, true
		}
	}

	if key := strings.ToLower(strings.ReplaceAll(e.IntentKey, "_", " ")); strings.TrimSpace(key) != "" && strings.Contains(raw, key) {
		return RuleIntentKey, e.IntentKey, true
	}

	return "", "", false
}
