package web

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type webContextKey string

const (
	webClaimsKey webContextKey = "webclaims"
	webUserKey   webContextKey = "webuser"
)

// tokenCookie holds the session JWT.
const tokenCookie = "token"

// SessionMiddleware resolves the session cookie into the current user. It
// never rejects a request: pages decide for themselves whether a user is
// required. Invalid, revoked or banned sessions are cleared.
func SessionMiddleware(secret string, db *sql.DB, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(tokenCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ValidateToken(secret, cookie.Value)
			if err != nil {
				clearAuthCookie(w, secure)
				next.ServeHTTP(w, r)
				return
			}

			if claims.ID != "" {
				revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
				if err != nil {
					slog.Error("failed to check token revocation", "error", err)
				}
				if err != nil || revoked {
					clearAuthCookie(w, secure)
					next.ServeHTTP(w, r)
					return
				}
			}

			// Role, ban and username changes take effect on the next request.
			user, err := store.GetUser(r.Context(), db, claims.UserID)
			if err != nil {
				slog.Error("failed to load session user", "error", err)
			}
			if user == nil || user.Banned {
				clearAuthCookie(w, secure)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), webClaimsKey, claims)
			ctx = context.WithValue(ctx, webUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireLogin redirects anonymous visitors to the login page.
func (s *Server) requireLogin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			s.setFlash(w, r, FlashError, "Please log in to access this page.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// requireAdmin redirects everyone without the administer capability to the
// login page.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if user == nil || !user.Role.Can(model.CapAdminister) {
			s.setFlash(w, r, FlashError, "You need admin privileges to access this page.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

func setAuthCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}

// currentUser returns the logged in user, or nil.
func currentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(webUserKey).(*model.User)
	return user
}
