package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

const dashboardRecent = 10

// Dashboard handles GET /dashboard. Reports and claims are matched to the
// account by email address.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	lost, err := store.ListItemsByEmail(ctx, s.DB, model.KindLost, user.Email)
	if err != nil {
		slog.Error("failed to list user lost items", "error", err)
	}
	found, err := store.ListItemsByEmail(ctx, s.DB, model.KindFound, user.Email)
	if err != nil {
		slog.Error("failed to list user found items", "error", err)
	}
	claims, err := store.ListClaimsByEmail(ctx, s.DB, user.Email)
	if err != nil {
		slog.Error("failed to list user claims", "error", err)
	}
	activity, err := store.ListUserActivity(ctx, s.DB, user.ID, dashboardRecent)
	if err != nil {
		slog.Error("failed to list user activity", "error", err)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Lost     []model.Item
		Found    []model.Item
		Claims   []model.Claim
		Activity []model.Activity
	}{
		PageData: s.page(w, r, "My Dashboard"),
		Lost:     limit(lost, dashboardRecent),
		Found:    limit(found, dashboardRecent),
		Claims:   limit(claims, dashboardRecent),
		Activity: activity,
	})
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

type profilePage struct {
	PageData
	Form profileForm
}

// ProfilePage handles GET /profile.
func (s *Server) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	s.Templates.Render(w, "profile.html", &profilePage{
		PageData: s.page(w, r, "My Profile"),
		Form:     profileForm{Username: user.Username, Email: user.Email},
	})
}

// ProfileSubmit handles POST /profile.
func (s *Server) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	var form profileForm
	bindForm(r, &form)
	data := &profilePage{PageData: s.page(w, r, "My Profile"), Form: form}

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.Templates.Render(w, "profile.html", data)
		return
	}

	if form.Username != user.Username {
		other, err := store.GetUserByUsername(ctx, s.DB, form.Username)
		if err != nil {
			slog.Error("failed to check username", "error", err)
		}
		if other != nil && other.ID != user.ID {
			data.Flash = &Flash{Kind: FlashError, Message: "Username already exists"}
			s.Templates.Render(w, "profile.html", data)
			return
		}
	}
	if form.Email != user.Email {
		other, err := store.GetUserByEmail(ctx, s.DB, form.Email)
		if err != nil {
			slog.Error("failed to check email", "error", err)
		}
		if other != nil && other.ID != user.ID {
			data.Flash = &Flash{Kind: FlashError, Message: "Email already registered"}
			s.Templates.Render(w, "profile.html", data)
			return
		}
	}

	if err := store.UpdateUserProfile(ctx, s.DB, user.ID, form.Username, form.Email); err != nil {
		slog.Error("failed to update profile", "user", user.Username, "error", err)
		data.Flash = &Flash{Kind: FlashError, Message: "An error occurred while updating your profile."}
		s.Templates.Render(w, "profile.html", data)
		return
	}

	s.logActivity(r, &user.ID, "update_profile", "Updated profile information")
	s.setFlash(w, r, FlashSuccess, "Profile updated successfully!")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// ChangePasswordPage handles GET /change-password.
func (s *Server) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "change_password.html", s.pageData(w, r, "Change Password"))
}

// ChangePasswordSubmit handles POST /change-password.
func (s *Server) ChangePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	var form passwordForm
	bindForm(r, &form)
	data := s.pageData(w, r, "Change Password")

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.Templates.Render(w, "change_password.html", data)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, string(form.CurrentPassword)) {
		data.Errors = map[string]string{"current_password": "Current password is incorrect"}
		s.Templates.Render(w, "change_password.html", data)
		return
	}

	hash, err := auth.HashPassword(string(form.NewPassword))
	if err == nil {
		err = store.UpdateUserPassword(ctx, s.DB, user.ID, hash)
	}
	if err != nil {
		slog.Error("failed to change password", "user", user.Username, "error", err)
		data.Flash = &Flash{Kind: FlashError, Message: "An error occurred while changing your password."}
		s.Templates.Render(w, "change_password.html", data)
		return
	}

	s.logActivity(r, &user.ID, "change_password", "Changed password")
	s.setFlash(w, r, FlashSuccess, "Password changed successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) pageData(w http.ResponseWriter, r *http.Request, title string) *PageData {
	data := s.page(w, r, title)
	return &data
}
