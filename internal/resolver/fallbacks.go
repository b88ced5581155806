package resolver

import "strings"

// TopicRule returns a canned paragraph when any of its term groups is
// fully contained in the query.
type TopicRule struct {
	Name string
	// Groups are alternatives; every term of one group must appear.
	Groups   [][]string
	Response string
}

// FallbackConfig configures the canned stages of the ladder.
type FallbackConfig struct {
	Topics []TopicRule
	// AllowList terms mark a query as on-topic.
	AllowList []string
	// DenyList terms mark a query as off-topic even when allowed terms appear.
	DenyList []string
}

// DefaultFallbackConfig returns the built-in topics and scope lists.
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		Topics: []TopicRule{
			{
				Name:     "design",
				Groups:   [][]string{{"design", "system"}, {"design", "ux"}, {"design", "ui"}, {"ux", "research"}, {"ui", "design"}},
				Response: "I can tell you about Jon's experience in design systems, UX research, and UI design. He has worked on projects for ZARA, Veridata, and various SaaS platforms. What specific aspect of design would you like to know about?",
			},
			{
				Name:     "saas_enterprise",
				Groups:   [][]string{{"saas", "platform"}, {"startup", "company"}, {"enterprise", "company"}},
				Response: "Jon has extensive experience in both SaaS startups and enterprise environments. He's worked on platforms for fintech, e-commerce, and government services. Would you like to know about his specific projects or methodologies?",
			},
			{
				Name:     "projects",
				Groups:   [][]string{{"project", "case"}, {"case study", "example"}},
				Response: "Jon has worked on diverse projects including ZARA's internal tools, Veridata's government services, and various fintech platforms. I can share details about specific projects, methodologies, or outcomes. What interests you most?",
			},
			{
				Name:     "research",
				Groups:   [][]string{{"research", "user"}, {"stakeholder", "alignment"}},
				Response: "Jon specializes in UX research, stakeholder alignment, and user-centered design processes. He has experience with both qualitative and quantitative research methods. What specific research aspect would you like to explore?",
			},
		},
		AllowList: []string{
			"jon", "gorroño", "design", "ux", "ui", "research", "design systems", "system",
			"project", "projects", "case study", "zara", "gestamp", "saas", "fintech",
			"healthcare", "automotive", "accessibility", "figma", "company", "enterprise",
			"startup", "portfolio", "career", "experience", "product", "designer",
		},
		DenyList: []string{
			"weather", "stock", "stocks", "football", "soccer", "nba", "recipe", "cooking",
			"celebrity", "politics", "election", "joke", "riddle", "math puzzle", "translate",
			"travel", "vacation", "movie", "tv show", "game", "gaming", "crypto",
		},
	}
}

// FallbackHandler evaluates the topic and scope stages.
type FallbackHandler struct {
	config FallbackConfig
}

// NewFallbackHandler creates a handler.
func NewFallbackHandler(config FallbackConfig) *FallbackHandler {
	return &FallbackHandler{config: config}
}

// Topic returns the first topic rule matching the query.
func (h *FallbackHandler) Topic(query string) (TopicRule, bool) {
	q := strings.ToLower(query)
	for _, rule := range h.config.Topics {
		for _, group := range rule.Groups {
			if containsAll(q, group) {
				return rule, true
			}
		}
	}
	return TopicRule{}, false
}

// OutOfScope reports whether the query lacks every allowed term or carries
// any denied one.
func (h *FallbackHandler) OutOfScope(query string) bool {
	q := strings.ToLower(query)
	return !containsAny(q, h.config.AllowList) || containsAny(q, h.config.DenyList)
}

func containsAll(q string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, t := range terms {
		if !strings.Contains(q, t) {
			return false
		}
	}
	return true
}

func containsAny(q string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(q, t) {
			return true
		}
	}
	return false
}
