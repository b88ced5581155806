// Package knowledge loads and holds the knowledge base the matchers read from.
package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/domain"
)

// Answers the widget used to emit when an entry had no text. Treated as no answer.
var placeholderAnswers = map[string]struct{}{
	"I found information about that in my knowledge base.": {},
	"I can help you with that topic.":                      {},
}

// Entry is one question/answer record of the knowledge document.
type Entry struct {
	ID                string   `json:"id"`
	IntentKey         string   `json:"intent_key"`
	CanonicalQuestion string   `json:"canonical_question"`
	QuestionVariants  []string `json:"question_variants"`
	Tags              []string `json:"tags"`
	Industries        []string `json:"industries,omitempty"`
	Answer            string   `json:"answer_en"`
	ConfidenceScore   float64  `json:"confidence_score,omitempty"`
	ReviewStatus      string   `json:"review_status,omitempty"`
}

// UnmarshalJSON accepts numeric ids and the older "answer" field name.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var raw struct {
		plain
		RawID        json.RawMessage `json:"id"`
		LegacyAnswer string          `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Entry(raw.plain)
	e.ID = decodeID(raw.RawID)
	if strings.TrimSpace(e.Answer) == "" {
		e.Answer = raw.LegacyAnswer
	}
	return nil
}

func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// HasAnswer reports whether the entry carries a usable answer.
func (e Entry) HasAnswer() bool {
	text := strings.TrimSpace(e.Answer)
	if text == "" {
		return false
	}
	_, placeholder := placeholderAnswers[text]
	return !placeholder
}

// ParseDocument decodes a knowledge document: a JSON array of entries.
func ParseDocument(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, domain.ParseError("decode knowledge document", err)
	}
	if entries == nil {
		return nil, domain.ParseError("knowledge document is not an array", fmt.Errorf("got %q", truncate(data, 32)))
	}
	return entries, nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
