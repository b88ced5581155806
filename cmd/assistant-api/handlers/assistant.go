package handlers

import (
	"net/http"
	"strings"

	"github.com/spherical-ai/profile-assistant/internal/observability"
	"github.com/spherical-ai/profile-assistant/internal/projects"
)

// AssistantHandler serves the chat, fit and project endpoints.
type AssistantHandler struct {
	logger   *observability.Logger
	resolver Resolver
	fit      FitAnalyzer
	projects ProjectLister
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(logger *observability.Logger, res Resolver, analyzer FitAnalyzer, catalog ProjectLister) *AssistantHandler {
	return &AssistantHandler{
		logger:   logger.WithComponent("api"),
		resolver: res,
		fit:      analyzer,
		projects: catalog,
	}
}

// AnswerRequestDTO is the body of POST /answer.
type AnswerRequestDTO struct {
	Question string `json:"question"`
}

// AnswerResponseDTO is the answer and how it was found.
type AnswerResponseDTO struct {
	Answer        string   `json:"answer"`
	Stage         string   `json:"stage"`
	StageNumber   int      `json:"stageNumber"`
	IntentKey     string   `json:"intentKey,omitempty"`
	EntryID       string   `json:"entryId,omitempty"`
	Score         int      `json:"score,omitempty"`
	MatchedFields []string `json:"matchedFields,omitempty"`
	Topic         string   `json:"topic,omitempty"`
	LatencyMs     int64    `json:"latencyMs"`
	TraceID       string   `json:"traceId,omitempty"`
}

// Answer handles POST /answer.
func (h *AssistantHandler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx).WithOperation("answer")

	var req AnswerRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if msg, ok := validateQuery("question", req.Question); !ok {
		writeError(w, logger, http.StatusBadRequest, msg, "")
		return
	}

	res := h.resolver.Resolve(ctx, req.Question)

	logger.Info().
		Question(req.Question).
		Str("stage", string(res.Stage)).
		Str("intent", res.IntentKey).
		Int64("latency_ms", res.Elapsed.Milliseconds()).
		Msg("Question answered")

	writeJSON(w, logger, http.StatusOK, AnswerResponseDTO{
		Answer:        res.Answer,
		Stage:         string(res.Stage),
		StageNumber:   res.Stage.Number(),
		IntentKey:     res.IntentKey,
		EntryID:       res.EntryID,
		Score:         res.Score,
		MatchedFields: res.MatchedFields,
		Topic:         res.Topic,
		LatencyMs:     res.Elapsed.Milliseconds(),
		TraceID:       observability.TraceIDFromContext(ctx),
	})
}

// FitRequestDTO is the body of POST /fit.
type FitRequestDTO struct {
	Query string `json:"query"`
}

// Fit handles POST /fit.
func (h *AssistantHandler) Fit(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithContext(r.Context()).WithOperation("fit")

	var req FitRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Query) > maxQueryLength {
		writeError(w, logger, http.StatusBadRequest, "query is too long", "")
		return
	}

	writeJSON(w, logger, http.StatusOK, h.fit.Analyze(r.Context(), req.Query))
}

// ProjectsResponseDTO lists project cards.
type ProjectsResponseDTO struct {
	Projects []projects.Project `json:"projects"`
}

// Projects handles GET /projects.
func (h *AssistantHandler) Projects(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithContext(r.Context()).WithOperation("projects")
	writeJSON(w, logger, http.StatusOK, ProjectsResponseDTO{Projects: h.projects.List(r.Context())})
}

// Messages handles GET /messages.
func (h *AssistantHandler) Messages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger.WithOperation("messages"), http.StatusOK, h.resolver.Messages())
}

// Routing handles GET /debug/routing?q=.
func (h *AssistantHandler) Routing(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithContext(r.Context()).WithOperation("routing")

	q := r.URL.Query().Get("q")
	if msg, ok := validateQuery("q", q); !ok {
		writeError(w, logger, http.StatusBadRequest, msg, "")
		return
	}
	writeJSON(w, logger, http.StatusOK, h.resolver.Explain(r.Context(), strings.TrimSpace(q)))
}
