package goalhandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/goal"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *goal.Service
	Perms   *auth.Service
}

func NewHandler(service *goal.Service, perms *auth.Service) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequireAnyPermission(h.Perms,
		auth.PermGoalReadSelf, auth.PermGoalReadSubordinates, auth.PermGoalReadDepartment, auth.PermGoalReadAll)
	manage := middleware.RequireAnyPermission(h.Perms, auth.PermGoalManageSelf, auth.PermGoalManageAll)
	approve := middleware.RequireAnyPermission(h.Perms, auth.PermGoalApprove)
	score := middleware.RequireAnyPermission(h.Perms, auth.PermEvaluationScore)

	r.Route("/goals", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(manage).Post("/", h.handleCreate)
		r.With(read).Get("/{goalID}", h.handleGet)
		r.With(manage).Put("/{goalID}", h.handleUpdate)
		r.With(manage).Delete("/{goalID}", h.handleDelete)
		r.With(manage).Post("/{goalID}/submit", h.handleSubmit)
		r.With(manage).Post("/{goalID}/withdraw", h.handleWithdraw)
		r.With(approve).Post("/{goalID}/approve", h.handleApprove)
		r.With(approve).Post("/{goalID}/reject", h.handleReject)
		r.With(approve).Post("/{goalID}/remand", h.handleRemand)
		r.With(score).Put("/{goalID}/rating", h.handleRate)
	})
}

type goalPayload struct {
	UserID       string          `json:"userId"`
	PeriodID     string          `json:"periodId" validate:"required"`
	Category     string          `json:"category" validate:"required,oneof=quantitative qualitative competency core_value"`
	Weight       decimal.Decimal `json:"weight"`
	Title        string          `json:"title" validate:"required,max=200"`
	TargetDetail string          `json:"targetDetail" validate:"max=2000"`
	Measure      string          `json:"measure" validate:"max=2000"`
}

type reviewPayload struct {
	Comment string `json:"comment" validate:"max=2000"`
}

type ratingPayload struct {
	Rating string `json:"rating" validate:"required,max=20"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	periodID := r.URL.Query().Get("periodId")
	goals, err := h.Service.List(r.Context(), caller, periodID)
	if err != nil {
		failGoal(w, r, err)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	total := len(goals)
	if page.Offset > total {
		page.Offset = total
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	api.Success(w, map[string]any{
		"items":  goals[page.Offset:end],
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	g, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "goalID"))
	if err != nil {
		failGoal(w, r, err)
		return
	}
	api.Success(w, g, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload goalPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}
	ownerID := payload.UserID
	if ownerID == "" {
		ownerID = caller.UserID
	}

	created, err := h.Service.Create(r.Context(), caller, ownerID, payload.PeriodID, goal.GoalFields{
		Category:     payload.Category,
		Weight:       payload.Weight,
		Title:        payload.Title,
		TargetDetail: payload.TargetDetail,
		Measure:      payload.Measure,
	})
	if err != nil {
		failGoal(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload goalPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	goalID := chi.URLParam(r, "goalID")
	err := h.Service.Update(r.Context(), caller, goalID, goal.GoalFields{
		Category:     payload.Category,
		Weight:       payload.Weight,
		Title:        payload.Title,
		TargetDetail: payload.TargetDetail,
		Measure:      payload.Measure,
	})
	if err != nil {
		failGoal(w, r, err)
		return
	}
	api.Success(w, map[string]string{"id": goalID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Delete(r.Context(), caller, chi.URLParam(r, "goalID")); err != nil {
		failGoal(w, r, err)
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(caller auth.Context, goalID string) error {
		return h.Service.Submit(r.Context(), caller, goalID)
	}, goal.StatusSubmitted)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(caller auth.Context, goalID string) error {
		return h.Service.Withdraw(r.Context(), caller, goalID)
	}, goal.StatusDraft)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.Approve, goal.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.Reject, goal.StatusRejected)
}

func (h *Handler) handleRemand(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.Remand, goal.StatusRejected)
}

func (h *Handler) handleRate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload ratingPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	goalID := chi.URLParam(r, "goalID")
	if err := h.Service.Rate(r.Context(), caller, goalID, payload.Rating); err != nil {
		failGoal(w, r, err)
		return
	}
	api.Success(w, map[string]string{"id": goalID, "rating": payload.Rating}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, run func(auth.Context, string) error, resulting string) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	goalID := chi.URLParam(r, "goalID")
	if err := run(caller, goalID); err != nil {
		failGoal(w, r, err)
		return
	}
	api.Success(w, map[string]string{"id": goalID, "status": resulting}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, caller auth.Context, goalID, comment string) error, resulting string) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reviewPayload
	if r.ContentLength != 0 {
		if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
			return
		}
	}

	goalID := chi.URLParam(r, "goalID")
	if err := run(r.Context(), caller, goalID, payload.Comment); err != nil {
		failGoal(w, r, err)
		return
	}
	api.Success(w, map[string]string{"id": goalID, "status": resulting}, middleware.GetRequestID(r.Context()))
}

// failGoal maps domain error kinds onto transport statuses: not-found 404,
// permission 403, business-rule violations 422.
func failGoal(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, goal.ErrGoalNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "goal not found", requestID)
	case errors.Is(err, goal.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation period not found", requestID)
	case errors.Is(err, goal.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, goal.ErrPermissionDenied):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, goal.ErrAlreadyExists):
		api.Fail(w, http.StatusUnprocessableEntity, "already_exists", "resource already exists", requestID)
	case errors.Is(err, goal.ErrInvalidTransition),
		errors.Is(err, goal.ErrOwnerNotActive),
		errors.Is(err, goal.ErrReviewCommented),
		errors.Is(err, goal.ErrPeriodNotActive),
		errors.Is(err, goal.ErrSelfAssessed),
		errors.Is(err, goal.ErrStageMissing),
		errors.Is(err, goal.ErrBudgetExceeded),
		errors.Is(err, goal.ErrWeightInvalid),
		errors.Is(err, goal.ErrCategoryInvalid),
		errors.Is(err, goal.ErrRatingInvalid):
		api.Fail(w, http.StatusUnprocessableEntity, "business_rule_violation", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
