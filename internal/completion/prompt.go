package completion

import (
	"fmt"
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/matching"
)

// DefaultSubject is the profile owner named in prompts.
const DefaultSubject = "Jon"

const noInfoSentence = "I don't have specific information about that in %s's profile yet."

// GroundedPrompt builds the user prompt for the answer fallback. With
// snippets the model is told to answer only from them; without, it is framed
// as the subject's profile bot.
func GroundedPrompt(question, subject string, snippets []matching.Snippet) string {
	if subject == "" {
		subject = DefaultSubject
	}
	noInfo := fmt.Sprintf(noInfoSentence, subject)

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", question)

	if len(snippets) == 0 {
		fmt.Fprintf(&b, "Instructions: You are %sBot, a chatbot about %s's professional experience. "+
			"Answer ONLY using %s's actual experience. If you don't have specific information about this topic, "+
			"say %q Do not provide generic or made-up information.", subject, subject, subject, noInfo)
		return b.String()
	}

	fmt.Fprintf(&b, "Context about %s's experience:\n", subject)
	for i, s := range snippets {
		fmt.Fprintf(&b, "%d. %s\n   Answer: %s\n\n", i+1, s.Question, s.Answer)
	}
	fmt.Fprintf(&b, "\nInstructions: Answer the question using ONLY the provided context about %s's experience. "+
		"If the context doesn't cover the question, say %q Do not provide generic or made-up information.", subject, noInfo)

	return b.String()
}

// FitSystemPrompt is the system prompt used when explaining role fit.
func FitSystemPrompt(subject string) string {
	if subject == "" {
		subject = DefaultSubject
	}
	return fmt.Sprintf("You are %[1]s's AI assistant. Answer questions about %[1]s's professional experience, "+
		"skills, and fit for different roles. Keep answers concise and relevant to %[1]s's background as a "+
		"Senior Product Designer with experience in SaaS, enterprise platforms, and design systems.", subject)
}
