package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/council/backend/internal/report"
	"github.com/wonny/council/backend/pkg/logger"
)

// ReportHandler handles report archive API endpoints
type ReportHandler struct {
	repo   *report.Repository // nil when the archive is disabled
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(repo *report.Repository, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		repo:   repo,
		logger: log,
	}
}

// ReportListResponse represents an archive index page
type ReportListResponse struct {
	Count   int              `json:"count"`
	Reports []report.Summary `json:"reports"`
}

// List returns the most recent archived reports
// GET /api/reports?limit=N
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusNotFound, "Report archive is not enabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	summaries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	if summaries == nil {
		summaries = []report.Summary{}
	}

	respondJSON(w, http.StatusOK, ReportListResponse{
		Count:   len(summaries),
		Reports: summaries,
	})
}

// Get returns one archived report
// GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusNotFound, "Report archive is not enabled")
		return
	}

	id := mux.Vars(r)["id"]
	rep, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Report not found")
			return
		}
		h.logger.WithError(err).Error("Failed to retrieve report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}
