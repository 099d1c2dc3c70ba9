package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// TempPasswordLength is the length of passwords generated for accounts
// created by an admin.
const TempPasswordLength = 12

// mainAdmin is the bootstrap account that cannot be deleted.
const mainAdmin = "admin"

// AdminUsers handles GET /admin/users.
func (s *Server) AdminUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	var (
		result model.Page[model.User]
		err    error
	)
	if query != "" {
		result, err = store.SearchUsers(r.Context(), s.DB, query, pageParam(r))
	} else {
		result, err = store.ListUsers(r.Context(), s.DB, pageParam(r))
	}
	if err != nil {
		slog.Error("failed to list users", "error", err)
	}

	s.Templates.Render(w, "admin_users.html", &struct {
		PageData
		Users []model.User
		Pager Pager
		Query string
	}{
		PageData: s.page(w, r, "Manage Users"),
		Users:    result.Items,
		Pager:    pagerFor(result, url.Values{"query": {query}}),
		Query:    query,
	})
}

type userFormPage struct {
	PageData
	Form   userForm
	Target *model.User
}

// NewUserPage handles GET /admin/users/new.
func (s *Server) NewUserPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "admin_user_form.html", &userFormPage{
		PageData: s.page(w, r, "Create User"),
		Form:     userForm{Role: string(model.RoleStudent)},
	})
}

// NewUserSubmit handles POST /admin/users/new. The account gets a random
// temporary password that is shown once.
func (s *Server) NewUserSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admin := currentUser(ctx)

	var form userForm
	bindForm(r, &form)
	data := &userFormPage{PageData: s.page(w, r, "Create User"), Form: form}
	rerender := func(msg string) {
		if msg != "" {
			data.Flash = &Flash{Kind: FlashError, Message: msg}
		}
		s.Templates.Render(w, "admin_user_form.html", data)
	}

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		rerender("")
		return
	}
	if existing, err := store.GetUserByUsername(ctx, s.DB, form.Username); err != nil || existing != nil {
		if err != nil {
			slog.Error("failed to check username", "error", err)
			rerender("An error occurred during user creation. Please try again.")
			return
		}
		rerender("Username already exists")
		return
	}
	if existing, err := store.GetUserByEmail(ctx, s.DB, form.Email); err != nil || existing != nil {
		if err != nil {
			slog.Error("failed to check email", "error", err)
			rerender("An error occurred during user creation. Please try again.")
			return
		}
		rerender("Email already registered")
		return
	}

	password, err := auth.GeneratePassword(TempPasswordLength)
	if err != nil {
		slog.Error("failed to generate password", "error", err)
		rerender("An error occurred during user creation. Please try again.")
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		rerender("An error occurred during user creation. Please try again.")
		return
	}

	role, _ := model.ParseRole(form.Role)
	user, err := store.CreateUser(ctx, s.DB, form.Username, form.Email, hash, role)
	if err == nil && (form.Verified || form.Banned) {
		err = store.UpdateUserAccess(ctx, s.DB, user.ID, user.Username, user.Email, role, form.Verified, form.Banned)
	}
	if err != nil {
		slog.Error("user creation failed", "user", form.Username, "error", err)
		rerender("An error occurred during user creation. Please try again.")
		return
	}

	s.logActivity(r, &admin.ID, "create_user", fmt.Sprintf("Created user %d (%s)", user.ID, user.Username))
	slog.Info("user created", "admin", admin.Username, "user", user.Username, "role", role)
	s.setFlash(w, r, FlashSuccess, "User created successfully! Temporary password: "+password)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// loadUser resolves {id} or renders the 404 page.
func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) *model.User {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return nil
	}
	user, err := store.GetUser(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	if user == nil {
		s.notFound(w, r)
	}
	return user
}

// EditUserPage handles GET /admin/users/{id}/edit.
func (s *Server) EditUserPage(w http.ResponseWriter, r *http.Request) {
	target := s.loadUser(w, r)
	if target == nil {
		return
	}
	s.Templates.Render(w, "admin_user_form.html", &userFormPage{
		PageData: s.page(w, r, "Edit User"),
		Target:   target,
		Form: userForm{
			Username: target.Username,
			Email:    target.Email,
			Role:     string(target.Role),
			Verified: target.Verified,
			Banned:   target.Banned,
		},
	})
}

// EditUserSubmit handles POST /admin/users/{id}/edit.
func (s *Server) EditUserSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admin := currentUser(ctx)
	target := s.loadUser(w, r)
	if target == nil {
		return
	}

	var form userForm
	bindForm(r, &form)
	data := &userFormPage{PageData: s.page(w, r, "Edit User"), Form: form, Target: target}

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.Templates.Render(w, "admin_user_form.html", data)
		return
	}
	if other, err := store.GetUserByUsername(ctx, s.DB, form.Username); err == nil && other != nil && other.ID != target.ID {
		data.Flash = &Flash{Kind: FlashError, Message: "Username already exists"}
		s.Templates.Render(w, "admin_user_form.html", data)
		return
	}
	if other, err := store.GetUserByEmail(ctx, s.DB, form.Email); err == nil && other != nil && other.ID != target.ID {
		data.Flash = &Flash{Kind: FlashError, Message: "Email already registered"}
		s.Templates.Render(w, "admin_user_form.html", data)
		return
	}

	role, _ := model.ParseRole(form.Role)
	if err := store.UpdateUserAccess(ctx, s.DB, target.ID, form.Username, form.Email, role, form.Verified, form.Banned); err != nil {
		slog.Error("failed to update user", "user", target.Username, "error", err)
		data.Flash = &Flash{Kind: FlashError, Message: "An error occurred while updating the user."}
		s.Templates.Render(w, "admin_user_form.html", data)
		return
	}

	s.logActivity(r, &admin.ID, "edit_user", fmt.Sprintf("Updated user %d (role=%s verified=%t banned=%t)", target.ID, role, form.Verified, form.Banned))
	slog.Info("user updated", "admin", admin.Username, "user", form.Username, "role", role, "banned", form.Banned)
	s.setFlash(w, r, FlashSuccess, "User updated successfully!")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// DeleteUserSubmit handles POST /admin/users/{id}/delete. Admins cannot
// delete themselves or the main admin account.
func (s *Server) DeleteUserSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admin := currentUser(ctx)
	target := s.loadUser(w, r)
	if target == nil {
		return
	}

	switch {
	case target.ID == admin.ID:
		s.setFlash(w, r, FlashError, "You cannot delete your own account.")
	case target.Username == mainAdmin:
		s.setFlash(w, r, FlashError, "You cannot delete the main admin user.")
	default:
		if err := store.DeleteUser(ctx, s.DB, target.ID); err != nil {
			slog.Error("failed to delete user", "user", target.Username, "error", err)
			s.setFlash(w, r, FlashError, "An error occurred while deleting the user.")
			break
		}
		s.logActivity(r, &admin.ID, "delete_user", fmt.Sprintf("Deleted user %s", target.Username))
		slog.Info("user deleted", "admin", admin.Username, "user", target.Username)
		s.setFlash(w, r, FlashSuccess, "User deleted successfully!")
	}
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}
