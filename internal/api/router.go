package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/ratelimit"
)

// Options carries the collaborators shared with the web portal.
type Options struct {
	Photos   *photos.Store
	Notifier notify.Notifier
	Limiter  ratelimit.Limiter
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) http.Handler {
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLogNotifier(slog.Default())
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewMemoryLimiter(0, time.Minute)
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Limiter: opts.Limiter}
	itemsHandler := &ItemsHandler{DB: db, Photos: opts.Photos}
	claimsHandler := &ClaimsHandler{DB: db, Notifier: opts.Notifier}
	catalogHandler := &CatalogHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	canClaim := RequireCapability(model.CapClaim)
	requireAdmin := RequireCapability(model.CapAdminister)
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{kind}/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/categories", catalogHandler.Categories)
	mux.HandleFunc("GET /api/locations", catalogHandler.Locations)

	// Authenticated.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/claims", authMW(canClaim(http.HandlerFunc(claimsHandler.Create))))

	// Admin.
	mux.Handle("GET /api/admin/items/{kind}", admin(itemsHandler.AdminList))
	mux.Handle("PUT /api/admin/items/{kind}/{id}/status", admin(itemsHandler.SetStatus))
	mux.Handle("POST /api/admin/items/{kind}/bulk", admin(itemsHandler.Bulk))
	mux.Handle("GET /api/admin/claims", admin(claimsHandler.List))
	mux.Handle("GET /api/admin/claims/{id}", admin(claimsHandler.Get))
	mux.Handle("POST /api/admin/claims/{id}/decision", admin(claimsHandler.Decide))
	mux.Handle("GET /api/admin/users", admin(usersHandler.List))
	mux.Handle("PATCH /api/admin/users/{id}", admin(usersHandler.UpdateAccess))
	mux.Handle("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.Handle("GET /api/admin/activity", admin(adminHandler.Activity))
	mux.Handle("POST /api/admin/expire", admin(adminHandler.Expire))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return mux
}
