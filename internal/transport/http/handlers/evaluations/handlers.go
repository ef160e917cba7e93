package evaluationhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/scoring"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
)

type Handler struct {
	Service *scoring.Service
	Perms   *auth.Service
}

func NewHandler(service *scoring.Service, perms *auth.Service) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireAnyPermission(h.Perms,
		auth.PermEvaluationReadSelf, auth.PermEvaluationReadSubordinates,
		auth.PermEvaluationReadDepartment, auth.PermEvaluationReadAll)

	r.Route("/evaluations", func(r chi.Router) {
		r.With(read).Get("/{userID}/periods/{periodID}/summary", h.handleSummary)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Service.Summarize(r.Context(), caller, chi.URLParam(r, "userID"), chi.URLParam(r, "periodID"))
	if err != nil {
		failScoring(w, r, err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func failScoring(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, scoring.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, scoring.ErrStageNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "stage not found", requestID)
	case errors.Is(err, scoring.ErrPermissionDenied):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, scoring.ErrNoRatings):
		api.Fail(w, http.StatusUnprocessableEntity, "no_ratings", "no approved rated goals in scoring categories", requestID)
	case errors.Is(err, scoring.ErrStageMissing):
		api.Fail(w, http.StatusUnprocessableEntity, "stage_missing", "user has no assigned stage", requestID)
	case errors.Is(err, scoring.ErrNoThresholds), errors.Is(err, scoring.ErrUnknownRating), errors.Is(err, scoring.ErrUnknownBucket):
		api.Fail(w, http.StatusUnprocessableEntity, "scoring_configuration", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
