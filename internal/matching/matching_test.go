package matching

import (
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
)

func fixtureEntries() []knowledge.Entry {
	return []knowledge.Entry{
		{
			ID:                "ds-1",
			IntentKey:         "design_systems_work",
			CanonicalQuestion: "What is your design systems experience?",
			QuestionVariants:  []string{"Have you built a design system?", "Tell me about component libraries"},
			Tags:              []string{"design systems", "tokens"},
			Industries:        []string{"fashion"},
			Answer:            "Jon led the design systems effort for ZARA's internal tools.",
		},
		{
			ID:                "ux-1",
			IntentKey:         "ux_research_experience",
			CanonicalQuestion: "How do you approach user research?",
			QuestionVariants:  []string{"What research methods do you use in your projects?"},
			Tags:              []string{"user research", "interviews"},
			Industries:        []string{"fintech", "saas"},
			Answer:            "Interviews, usability testing and journey mapping.",
		},
		{
			ID:                "bd-1",
			IntentKey:         "behavioral_design_experience",
			CanonicalQuestion: "Do you apply behavioral science?",
			Tags:              []string{"nudges"},
			Answer:            "Yes, using the COM-B model.",
		},
	}
}
