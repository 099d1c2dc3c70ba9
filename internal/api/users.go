package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// UsersHandler handles admin user management endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type updateAccessRequest struct {
	Role     *string `json:"role"`
	Verified *bool   `json:"is_verified"`
	Banned   *bool   `json:"is_banned"`
}

// List handles GET /api/admin/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		page model.Page[model.User]
		err  error
	)
	if query := r.URL.Query().Get("query"); query != "" {
		page, err = store.SearchUsers(r.Context(), h.DB, query, pageParam(r))
	} else {
		page, err = store.ListUsers(r.Context(), h.DB, pageParam(r))
	}
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if page.Items == nil {
		page.Items = []model.User{}
	}
	jsonResponse(w, http.StatusOK, page)
}

// UpdateAccess handles PATCH /api/admin/users/{id}. Only the fields present
// in the body change.
func (h *UsersHandler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if target == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	admin := GetUser(r.Context())
	role, verified, banned := target.Role, target.Verified, target.Banned
	if req.Role != nil {
		if role, err = model.ParseRole(*req.Role); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid role")
			return
		}
	}
	if req.Verified != nil {
		verified = *req.Verified
	}
	if req.Banned != nil {
		banned = *req.Banned
	}
	if target.ID == admin.ID && (banned || role != model.RoleAdmin) {
		jsonError(w, http.StatusBadRequest, "cannot demote or ban yourself")
		return
	}

	if err := store.UpdateUserAccess(r.Context(), h.DB, target.ID, target.Username, target.Email, role, verified, banned); err != nil {
		slog.Error("failed to update user", "user", target.Username, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	logActivity(r, h.DB, &admin.ID, "edit_user", "Updated access for "+target.Username+" via API")
	slog.Info("user updated", "admin", admin.Username, "user", target.Username, "role", role, "banned", banned)

	updated, err := store.GetUser(r.Context(), h.DB, target.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}
