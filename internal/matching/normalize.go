// Package matching implements the knowledge-base matchers: the static keyword
// table, weighted direct matching, looser intent detection and grounding
// snippet ranking for the completion fallback.
package matching

import "strings"

var (
	spellingReplacer    = strings.NewReplacer("behavioural", "behavioral")
	punctuationReplacer = strings.NewReplacer("?", "", ".", "", ",", "", "!", "")
)

// NormalizeQuery lowercases and trims a query and folds British spelling of
// "behavioural". Diacritics are preserved.
func NormalizeQuery(q string) string {
	return spellingReplacer.Replace(strings.ToLower(strings.TrimSpace(q)))
}

// StripPunctuation removes ?.,! and surrounding whitespace.
func StripPunctuation(s string) string {
	return strings.TrimSpace(punctuationReplacer.Replace(s))
}

// containsEither reports whether a contains b or b contains a.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// sharedWords counts distinct words present in both strings.
func sharedWords(a, b string) int {
	left, right := wordSet(a), wordSet(b)
	if len(right) < len(left) {
		left, right = right, left
	}
	n := 0
	for w := range left {
		if _, ok := right[w]; ok {
			n++
		}
	}
	return n
}
