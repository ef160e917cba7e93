package permissionhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manage := middleware.RequireAnyPermission(h.Service, auth.PermPermissionManage)

	r.Route("/permissions", func(r chi.Router) {
		r.With(manage).Get("/", h.handleCatalog)
		r.With(manage).Post("/batch", h.handleBatch)
	})
	r.Route("/roles/{role}", func(r chi.Router) {
		r.With(manage).Get("/permissions", h.handleGetRolePermissions)
		r.With(manage).Put("/permissions", h.handleReplaceRolePermissions)
		r.With(manage).Patch("/permissions", h.handlePatchRolePermissions)
		r.With(manage).Post("/clone", h.handleClone)
	})
}

type replacePayload struct {
	Permissions []string `json:"permissions" validate:"required"`
}

type patchPayload struct {
	Grant  []string `json:"grant"`
	Revoke []string `json:"revoke"`
}

type clonePayload struct {
	TargetRole string `json:"targetRole" validate:"required"`
}

type batchPayload struct {
	Items []auth.BatchItem `json:"items" validate:"required,min=1"`
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Catalog(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRolePermissions(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := h.callerAndRole(w, r)
	if !ok {
		return
	}

	codes, err := h.Service.RolePermissionSet(r.Context(), caller.OrgID, role)
	if err != nil {
		failPermission(w, r, err)
		return
	}
	api.Success(w, map[string]any{"role": role.String(), "permissions": codes}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReplaceRolePermissions(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := h.callerAndRole(w, r)
	if !ok {
		return
	}

	var payload replacePayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	if err := h.Service.ReplaceRolePermissions(r.Context(), caller.OrgID, role, payload.Permissions); err != nil {
		failPermission(w, r, err)
		return
	}
	api.Success(w, map[string]string{"role": role.String()}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePatchRolePermissions(w http.ResponseWriter, r *http.Request) {
	caller, role, ok := h.callerAndRole(w, r)
	if !ok {
		return
	}

	var payload patchPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	if err := h.Service.PatchRolePermissions(r.Context(), caller.OrgID, role, payload.Grant, payload.Revoke); err != nil {
		failPermission(w, r, err)
		return
	}
	api.Success(w, map[string]string{"role": role.String()}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClone(w http.ResponseWriter, r *http.Request) {
	caller, from, ok := h.callerAndRole(w, r)
	if !ok {
		return
	}

	var payload clonePayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}
	to, found := auth.LookupRole(payload.TargetRole)
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "target role not found", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.CloneRolePermissions(r.Context(), caller.OrgID, from, to); err != nil {
		failPermission(w, r, err)
		return
	}
	api.Success(w, map[string]string{"sourceRole": from.String(), "targetRole": to.String()}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload batchPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	result, err := h.Service.BatchUpdate(r.Context(), caller.OrgID, payload.Items)
	if err != nil {
		failPermission(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) callerAndRole(w http.ResponseWriter, r *http.Request) (auth.Context, auth.Role, bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.Context{}, 0, false
	}
	role, found := auth.LookupRole(chi.URLParam(r, "role"))
	if !found {
		api.Fail(w, http.StatusNotFound, "not_found", "role not found", middleware.GetRequestID(r.Context()))
		return auth.Context{}, 0, false
	}
	return caller, role, true
}

func failPermission(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, auth.ErrBatchTooLarge):
		api.Fail(w, http.StatusBadRequest, "batch_too_large", err.Error(), requestID)
	case errors.Is(err, auth.ErrUnknownPermission):
		api.Fail(w, http.StatusUnprocessableEntity, "unknown_permission", err.Error(), requestID)
	case errors.Is(err, auth.ErrRoleNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "role not found", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
