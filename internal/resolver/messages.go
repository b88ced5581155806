package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/domain"
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// Built-in user-facing messages.
const (
	DefaultCompanyFitPrompt = "Enter a role or keyword (e.g., 'Product Designer', 'Fintech', 'Design Systems') to analyze fit."
	DefaultOutOfScope       = "That's an interesting topic! I'm focused on sharing Jon Gorroño's professional experience and career as a Product Designer. Would you like to know more about his design approach, his projects, or his collaboration with teams?"
	DefaultGeneralFallback  = "I can help you learn about Jon's experience in design systems, UX research, SaaS platforms, and enterprise projects. Try asking about specific areas like 'design systems experience', 'SaaS projects', or 'UX research methods'."
	DefaultErrorMessage     = "I'm sorry, I encountered an error while processing your question. Please try asking about Jon's experience in design systems, SaaS, or enterprise projects."
)

// SystemMessages holds the canned texts shown by the last ladder stages.
type SystemMessages struct {
	CompanyFitPrompt string `json:"companyFitPrompt"`
	OutOfScope       string `json:"outOfScope"`
	GeneralFallback  string `json:"generalFallback"`
	ErrorMessage     string `json:"errorMessage"`
}

// DefaultSystemMessages returns the built-in messages.
func DefaultSystemMessages() SystemMessages {
	return SystemMessages{
		CompanyFitPrompt: DefaultCompanyFitPrompt,
		OutOfScope:       DefaultOutOfScope,
		GeneralFallback:  DefaultGeneralFallback,
		ErrorMessage:     DefaultErrorMessage,
	}
}

type messagesDocument struct {
	WelcomeMessages struct {
		CompanyFitPrompt string `json:"company_fit_prompt"`
	} `json:"welcome_messages"`
	ErrorMessages struct {
		OutOfScope      string `json:"out_of_scope"`
		GeneralFallback string `json:"general_fallback"`
	} `json:"error_messages"`
}

// ParseSystemMessages decodes a system messages document. Missing or blank
// fields keep their defaults.
func ParseSystemMessages(data []byte) (SystemMessages, error) {
	msgs := DefaultSystemMessages()

	var doc messagesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return msgs, domain.ParseError("decode system messages", err)
	}

	override(&msgs.CompanyFitPrompt, doc.WelcomeMessages.CompanyFitPrompt)
	override(&msgs.OutOfScope, doc.ErrorMessages.OutOfScope)
	override(&msgs.GeneralFallback, doc.ErrorMessages.GeneralFallback)

	return msgs, nil
}

// LoadSystemMessages reads the messages document at location. Any failure
// is logged and yields the defaults.
func LoadSystemMessages(ctx context.Context, location string, client *http.Client, logger *observability.Logger) SystemMessages {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if location == "" {
		return DefaultSystemMessages()
	}

	data, err := knowledge.ReadLocation(ctx, location, client)
	if err != nil {
		logger.Warn().Err(err).Str("location", location).Msg("System messages unavailable, using defaults")
		return DefaultSystemMessages()
	}

	msgs, err := ParseSystemMessages(data)
	if err != nil {
		logger.Warn().Err(err).Str("location", location).Msg("System messages unreadable, using defaults")
	}
	return msgs
}

func (m SystemMessages) withDefaults() SystemMessages {
	out := DefaultSystemMessages()
	override(&out.CompanyFitPrompt, m.CompanyFitPrompt)
	override(&out.OutOfScope, m.OutOfScope)
	override(&out.GeneralFallback, m.GeneralFallback)
	override(&out.ErrorMessage, m.ErrorMessage)
	return out
}

func override(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
