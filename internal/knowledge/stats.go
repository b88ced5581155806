package knowledge

import (
	"sort"
	"strings"
)

// Stats summarizes a knowledge document for data quality checks.
type Stats struct {
	Total              int            `json:"total"`
	MissingAnswers     int            `json:"missingAnswers"`
	Duplicates         int            `json:"duplicates"`
	DuplicateQuestions []string       `json:"duplicateQuestions,omitempty"`
	Intents            map[string]int `json:"intents"`
}

// ComputeStats counts entries, unusable answers and repeated canonical questions.
func ComputeStats(entries []Entry) Stats {
	stats := Stats{
		Total:   len(entries),
		Intents: make(map[string]int),
	}

	seen := make(map[string]int)
	for _, e := range entries {
		if !e.HasAnswer() {
			stats.MissingAnswers++
		}
		if e.IntentKey != "" {
			stats.Intents[e.IntentKey]++
		}

		q := strings.TrimSpace(e.CanonicalQuestion)
		if q == "" {
			continue
		}
		seen[q]++
		if seen[q] == 2 {
			stats.DuplicateQuestions = append(stats.DuplicateQuestions, q)
		}
		if seen[q] > 1 {
			stats.Duplicates++
		}
	}

	sort.Strings(stats.DuplicateQuestions)
	return stats
}
