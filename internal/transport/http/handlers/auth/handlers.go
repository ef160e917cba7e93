package authhandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfeval/internal/domain/auth"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	DB     *pgxpool.Pool
	Secret string
	Perms  *auth.Service
}

func NewHandler(db *pgxpool.Pool, secret string, perms *auth.Service) *Handler {
	return &Handler{DB: db, Secret: secret, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireAuth).Get("/auth/me", h.handleMe)
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !shared.DecodeAndValidate(w, r, middleware.GetRequestID(r.Context()), &payload) {
		return
	}

	var id, orgID, hash, status string
	var roles []string
	err := h.DB.QueryRow(r.Context(), `
		SELECT id, org_id, password_hash, status, roles
		FROM users
		WHERE lower(email) = lower($1)
	`, strings.TrimSpace(payload.Email)).Scan(&id, &orgID, &hash, &status, &roles)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if status != "active" {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: id, OrgID: orgID, Roles: roles}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token":     token,
		"expiresIn": int(tokenTTL.Seconds()),
		"userId":    id,
		"roles":     roles,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	set, err := h.Perms.EffectivePermissions(r.Context(), caller.OrgID, caller.Roles)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to resolve permissions", middleware.GetRequestID(r.Context()))
		return
	}

	roles := make([]string, 0, len(caller.Roles))
	for _, role := range caller.Roles {
		roles = append(roles, role.String())
	}
	api.Success(w, map[string]any{
		"userId":      caller.UserID,
		"orgId":       caller.OrgID,
		"roles":       roles,
		"permissions": set.Codes(),
	}, middleware.GetRequestID(r.Context()))
}
