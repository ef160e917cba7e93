package reporthandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/report"
	"perfeval/internal/domain/scoring"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
)

type Handler struct {
	Service *report.Service
	Perms   *auth.Service
}

func NewHandler(service *report.Service, perms *auth.Service) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	export := middleware.RequireAnyPermission(h.Perms, auth.PermReportExport)

	r.Route("/reports", func(r chi.Router) {
		r.With(export).Get("/evaluations/{userID}/periods/{periodID}/pdf", h.handleEvaluationPDF)
	})
}

func (h *Handler) handleEvaluationPDF(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	userID := chi.URLParam(r, "userID")
	periodID := chi.URLParam(r, "periodID")
	pdf, err := h.Service.EvaluationSummaryPDF(r.Context(), caller, userID, periodID)
	if err != nil {
		failReport(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=evaluation-%s-%s.pdf", userID, periodID))
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("pdf export write failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
	}
}

func failReport(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, report.ErrUserNotFound), errors.Is(err, scoring.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, report.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation period not found", requestID)
	case errors.Is(err, report.ErrPermissionDenied), errors.Is(err, scoring.ErrPermissionDenied):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, scoring.ErrNoRatings):
		api.Fail(w, http.StatusUnprocessableEntity, "no_ratings", "no approved rated goals in scoring categories", requestID)
	case errors.Is(err, scoring.ErrStageMissing):
		api.Fail(w, http.StatusUnprocessableEntity, "stage_missing", "user has no assigned stage", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "report generation failed", requestID)
	}
}
