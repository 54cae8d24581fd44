package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homestock/internal/insights"
)

type InsightsHandler struct {
	svc    *insights.Service
	logger *slog.Logger
}

func NewInsightsHandler(svc *insights.Service, logger *slog.Logger) *InsightsHandler {
	return &InsightsHandler{svc: svc, logger: logger}
}

func (h *InsightsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Recommendations()
	if err != nil {
		serverError(w, h.logger, "failed to build recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *InsightsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		serverError(w, h.logger, "failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *InsightsHandler) Attention(w http.ResponseWriter, r *http.Request) {
	att, err := h.svc.Attention()
	if err != nil {
		serverError(w, h.logger, "failed to compute attention items", err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}
