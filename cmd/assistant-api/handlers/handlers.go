// Package handlers provides HTTP handlers for the assistant API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/fit"
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/observability"
	"github.com/spherical-ai/profile-assistant/internal/projects"
	"github.com/spherical-ai/profile-assistant/internal/resolver"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// maxQueryLength caps question and fit query length.
const maxQueryLength = 1000

// Resolver answers questions.
type Resolver interface {
	Resolve(ctx context.Context, question string) resolver.Resolution
	Explain(ctx context.Context, question string) resolver.Trace
	Messages() resolver.SystemMessages
}

// FitAnalyzer scores role fit.
type FitAnalyzer interface {
	Analyze(ctx context.Context, query string) fit.Result
}

// ProjectLister lists portfolio projects.
type ProjectLister interface {
	List(ctx context.Context) []projects.Project
}

// KnowledgeReader reads the knowledge store.
type KnowledgeReader interface {
	Load(ctx context.Context) []knowledge.Entry
	IsLoaded() bool
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func validateQuery(field, value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return field + " is required", false
	}
	if len(value) > maxQueryLength {
		return field + " is too long", false
	}
	return "", true
}

func writeJSON(w http.ResponseWriter, logger *observability.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger *observability.Logger, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, logger, status, resp)
}
