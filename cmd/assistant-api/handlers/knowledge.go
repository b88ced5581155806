package handlers

import (
	"net/http"

	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// KnowledgeHandler serves store status.
type KnowledgeHandler struct {
	logger *observability.Logger
	store  KnowledgeReader
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(logger *observability.Logger, store KnowledgeReader) *KnowledgeHandler {
	return &KnowledgeHandler{logger: logger.WithComponent("api"), store: store}
}

// Stats handles GET /knowledge/stats.
func (h *KnowledgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	entries := h.store.Load(r.Context())
	writeJSON(w, h.logger.WithOperation("knowledge_stats"), http.StatusOK, struct {
		Loaded bool `json:"loaded"`
		knowledge.Stats
	}{
		Loaded: h.store.IsLoaded(),
		Stats:  knowledge.ComputeStats(entries),
	})
}

// Ready handles GET /ready. The store is loaded on demand, so this also warms it.
func (h *KnowledgeHandler) Ready(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithOperation("ready")
	entries := h.store.Load(r.Context())
	if !h.store.IsLoaded() {
		writeJSON(w, logger, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": "knowledge base not loaded"})
		return
	}
	writeJSON(w, logger, http.StatusOK, map[string]interface{}{"status": "ready", "entries": len(entries)})
}
