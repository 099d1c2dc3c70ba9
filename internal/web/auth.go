package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type loginPage struct {
	PageData
	Form loginForm
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(r.Context()); user != nil {
		http.Redirect(w, r, dashboardFor(user), http.StatusSeeOther)
		return
	}
	s.Templates.Render(w, "login.html", &loginPage{PageData: s.page(w, r, "Login")})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	bindForm(r, &form)
	data := &loginPage{PageData: s.page(w, r, "Login"), Form: form}
	data.Form.Password = ""

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.Templates.Render(w, "login.html", data)
		return
	}

	allowed, err := s.Limiter.Allow(r.Context(), "login:"+clientIP(r))
	if err != nil {
		slog.Warn("login rate limiter unavailable", "error", err)
	}
	if !allowed {
		metrics.Logins.WithLabelValues(metrics.LoginThrottled).Inc()
		data.Flash = &Flash{Kind: FlashError, Message: "Too many login attempts. Please wait a minute and try again."}
		s.Templates.RenderStatus(w, http.StatusTooManyRequests, "login.html", data)
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.DB, form.Username)
	if err != nil {
		slog.Error("failed to look up user", "error", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, string(form.Password)) {
		metrics.Logins.WithLabelValues(metrics.LoginFailed).Inc()
		slog.Warn("failed login attempt", "user", form.Username, "ip", clientIP(r))
		data.Flash = &Flash{Kind: FlashError, Message: "Invalid username or password"}
		s.Templates.Render(w, "login.html", data)
		return
	}

	if user.Banned {
		metrics.Logins.WithLabelValues(metrics.LoginBanned).Inc()
		data.Flash = &Flash{Kind: FlashError, Message: "Your account has been banned. Please contact administrator."}
		s.Templates.Render(w, "login.html", data)
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		data.Flash = &Flash{Kind: FlashError, Message: "Login failed. Please try again."}
		s.Templates.Render(w, "login.html", data)
		return
	}

	if err := store.TouchLastLogin(r.Context(), s.DB, user.ID); err != nil {
		slog.Warn("failed to update last login", "user", user.Username, "error", err)
	}
	s.logActivity(r, &user.ID, "login", "User logged in")
	metrics.Logins.WithLabelValues(metrics.LoginSuccess).Inc()
	slog.Info("user logged in", "user", user.Username)

	setAuthCookie(w, token, s.CookieSecure)
	s.setFlash(w, r, FlashSuccess, "Login successful!")
	http.Redirect(w, r, dashboardFor(user), http.StatusSeeOther)
}

type registerPage struct {
	PageData
	Form             registerForm
	AllowAdminSignup bool
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(r.Context()); user != nil {
		http.Redirect(w, r, dashboardFor(user), http.StatusSeeOther)
		return
	}
	s.Templates.Render(w, "register.html", &registerPage{
		PageData:         s.page(w, r, "Register"),
		Form:             registerForm{Role: string(model.RoleStudent)},
		AllowAdminSignup: s.AllowAdminSignup,
	})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	bindForm(r, &form)
	if form.Role == "" {
		form.Role = string(model.RoleStudent)
	}

	data := &registerPage{PageData: s.page(w, r, "Register"), Form: form, AllowAdminSignup: s.AllowAdminSignup}
	data.Form.Password, data.Form.ConfirmPassword = "", ""
	rerender := func(msg string) {
		if msg != "" {
			data.Flash = &Flash{Kind: FlashError, Message: msg}
		}
		s.Templates.Render(w, "register.html", data)
	}

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		rerender("")
		return
	}
	role, _ := model.ParseRole(form.Role)
	if role == model.RoleAdmin && !s.AllowAdminSignup {
		data.Errors = map[string]string{"role": "Admin accounts are created by administrators."}
		rerender("")
		return
	}

	ctx := r.Context()
	if existing, err := store.GetUserByUsername(ctx, s.DB, form.Username); err != nil {
		slog.Error("failed to check username", "error", err)
		rerender("An error occurred during registration. Please try again.")
		return
	} else if existing != nil {
		rerender("Username already exists")
		return
	}
	if existing, err := store.GetUserByEmail(ctx, s.DB, form.Email); err != nil {
		slog.Error("failed to check email", "error", err)
		rerender("An error occurred during registration. Please try again.")
		return
	} else if existing != nil {
		rerender("Email already registered")
		return
	}

	hash, err := auth.HashPassword(string(form.Password))
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		rerender("An error occurred during registration. Please try again.")
		return
	}

	user, err := store.CreateUser(ctx, s.DB, form.Username, form.Email, hash, role)
	if err != nil {
		slog.Error("registration failed", "user", form.Username, "error", err)
		rerender("An error occurred during registration. Please try again.")
		return
	}

	s.logActivity(r, &user.ID, "register", fmt.Sprintf("New user registered: %s", user.Username))
	slog.Info("user registered", "user", user.Username, "role", user.Role)

	s.setFlash(w, r, FlashSuccess, "Registration successful! Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles POST /logout. The session token is revoked so a copied
// cookie cannot be replayed.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := GetWebClaims(r.Context()); claims != nil && claims.ID != "" {
		expiresAt := time.Now().Add(auth.TokenExpiry)
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		if err := store.RevokeToken(r.Context(), s.DB, claims.ID, expiresAt); err != nil {
			slog.Error("failed to revoke token", "error", err)
		}
		s.logActivity(r, &claims.UserID, "logout", "User logged out")
	}

	clearAuthCookie(w, s.CookieSecure)
	s.setFlash(w, r, FlashSuccess, "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
