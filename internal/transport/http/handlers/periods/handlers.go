package periodhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/period"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *period.Service
	Perms   *auth.Service
}

func NewHandler(service *period.Service, perms *auth.Service) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manage := middleware.RequireAnyPermission(h.Perms, auth.PermPeriodManage)

	r.Route("/periods", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{periodID}", h.handleGet)
		r.With(manage).Post("/", h.handleCreate)
		r.With(manage).Patch("/{periodID}/status", h.handleUpdateStatus)
	})
}

type createPayload struct {
	Name      string `json:"name" validate:"required,max=200"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

type statusPayload struct {
	Status string `json:"status" validate:"required,oneof=active completed cancelled"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	periods, err := h.Service.List(r.Context(), caller.OrgID)
	if err != nil {
		failPeriod(w, r, err)
		return
	}
	api.Success(w, periods, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	p, err := h.Service.Get(r.Context(), caller.OrgID, chi.URLParam(r, "periodID"))
	if err != nil {
		failPeriod(w, r, err)
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "startDate", Reason: "must be a date"}})
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "endDate", Reason: "must be a date"}})
		return
	}
	if end.Before(start) {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "endDate", Reason: "must not precede startDate"}})
		return
	}

	created, err := h.Service.Create(r.Context(), caller.OrgID, payload.Name, start, end)
	if err != nil {
		failPeriod(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload statusPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	periodID := chi.URLParam(r, "periodID")
	if err := h.Service.UpdateStatus(r.Context(), caller.OrgID, periodID, payload.Status); err != nil {
		failPeriod(w, r, err)
		return
	}
	api.Success(w, map[string]string{"id": periodID, "status": payload.Status}, middleware.GetRequestID(r.Context()))
}

func failPeriod(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, period.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation period not found", requestID)
	case errors.Is(err, period.ErrInvalidStatus):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_status", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
