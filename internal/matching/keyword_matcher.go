package matching

import "strings"

// KeywordMatcher maps short queries to intents through a fixed keyword table.
type KeywordMatcher struct {
	table []KeywordIntent
	exact map[string]string
}

// NewKeywordMatcher creates a matcher over DefaultKeywordTable.
func NewKeywordMatcher() *KeywordMatcher {
	return NewKeywordMatcherWithTable(DefaultKeywordTable)
}

// NewKeywordMatcherWithTable creates a matcher over a custom table. The
// first occurrence of a duplicated keyword wins the exact lookup.
func NewKeywordMatcherWithTable(table []KeywordIntent) *KeywordMatcher {
	exact := make(map[string]string, len(table))
	for _, kw := range table {
		if _, dup := exact[kw.Keyword]; !dup {
			exact[kw.Keyword] = kw.Intent
		}
	}
	return &KeywordMatcher{table: table, exact: exact}
}

// Match returns the intent for query. An exact keyword wins; otherwise the
// first table entry that is contained in the query, or contains the whole
// query, is used.
func (m *KeywordMatcher) Match(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	if intent, ok := m.exact[q]; ok {
		return intent, true
	}

	for _, kw := range m.table {
		if containsEither(q, kw.Keyword) {
			return kw.Intent, true
		}
	}
	return "", false
}

// CountHits counts table phrases contained in query. Duplicate phrases count
// once each time they appear in the table.
func (m *KeywordMatcher) CountHits(query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	hits := 0
	for _, kw := range m.table {
		if strings.Contains(q, kw.Keyword) {
			hits++
		}
	}
	return hits
}

// Table returns the keyword table in scan order.
func (m *KeywordMatcher) Table() []KeywordIntent {
	return m.table
}
