package web

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/ratelimit"
	webembed "github.com/erazemk/lostfound/web"
)

// Options carries the collaborators and switches of the web portal.
type Options struct {
	Photos   *photos.Store
	Notifier notify.Notifier
	Limiter  ratelimit.Limiter

	CookieSecure     bool
	AllowAdminSignup bool
	MaxPhotoBytes    int64
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:               db,
		Templates:        templates,
		JWTSecret:        jwtSecret,
		Photos:           opts.Photos,
		Notifier:         opts.Notifier,
		Limiter:          opts.Limiter,
		Flashes:          newFlashStore(jwtSecret, opts.CookieSecure),
		CookieSecure:     opts.CookieSecure,
		AllowAdminSignup: opts.AllowAdminSignup,
		MaxPhotoBytes:    opts.MaxPhotoBytes,
	}
	if s.Notifier == nil {
		s.Notifier = notify.NewLogNotifier(slog.Default())
	}
	if s.Limiter == nil {
		s.Limiter = ratelimit.NewMemoryLimiter(0, time.Minute)
	}
	if s.MaxPhotoBytes <= 0 {
		s.MaxPhotoBytes = 5 << 20
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /{$}", s.Home)
	mux.HandleFunc("GET /lost-items", s.Browse(model.KindLost))
	mux.HandleFunc("GET /found-items", s.Browse(model.KindFound))
	mux.HandleFunc("GET /items/{kind}/{id}", s.ItemDetail)
	mux.HandleFunc("GET /search", s.Search)
	mux.HandleFunc("GET /uploads/{name}", s.Upload)
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)

	// Authenticated routes.
	mux.Handle("POST /logout", s.requireLogin(s.Logout))
	mux.Handle("GET /dashboard", s.requireLogin(s.Dashboard))
	mux.Handle("GET /profile", s.requireLogin(s.ProfilePage))
	mux.Handle("POST /profile", s.requireLogin(s.ProfileSubmit))
	mux.Handle("GET /change-password", s.requireLogin(s.ChangePasswordPage))
	mux.Handle("POST /change-password", s.requireLogin(s.ChangePasswordSubmit))
	mux.Handle("GET /report/{kind}", s.requireLogin(s.ReportPage))
	mux.Handle("POST /report/{kind}", s.requireLogin(s.ReportSubmit))
	mux.Handle("GET /claim", s.requireLogin(s.ClaimPage))
	mux.Handle("POST /claim", s.requireLogin(s.ClaimSubmit))

	// Admin routes.
	mux.Handle("GET /admin", s.requireAdmin(s.AdminDashboard))
	mux.Handle("GET /admin/items/{kind}", s.requireAdmin(s.AdminItems))
	mux.Handle("GET /admin/items/{kind}/{id}/edit", s.requireAdmin(s.EditItemPage))
	mux.Handle("POST /admin/items/{kind}/{id}/edit", s.requireAdmin(s.EditItemSubmit))
	mux.Handle("POST /admin/items/{kind}/{id}/status", s.requireAdmin(s.ItemStatusSubmit))
	mux.Handle("POST /admin/items/{kind}/{id}/delete", s.requireAdmin(s.ItemDeleteSubmit))
	mux.Handle("POST /admin/items/{kind}/bulk", s.requireAdmin(s.BulkSubmit))

	mux.Handle("GET /admin/claims", s.requireAdmin(s.AdminClaims))
	mux.Handle("GET /admin/claims/{id}", s.requireAdmin(s.ClaimDetail))
	mux.Handle("POST /admin/claims/{id}", s.requireAdmin(s.ClaimDecide))
	mux.Handle("POST /admin/claims/{id}/delete", s.requireAdmin(s.ClaimDeleteSubmit))

	mux.Handle("GET /admin/users", s.requireAdmin(s.AdminUsers))
	mux.Handle("GET /admin/users/new", s.requireAdmin(s.NewUserPage))
	mux.Handle("POST /admin/users/new", s.requireAdmin(s.NewUserSubmit))
	mux.Handle("GET /admin/users/{id}/edit", s.requireAdmin(s.EditUserPage))
	mux.Handle("POST /admin/users/{id}/edit", s.requireAdmin(s.EditUserSubmit))
	mux.Handle("POST /admin/users/{id}/delete", s.requireAdmin(s.DeleteUserSubmit))

	for _, c := range []*catalog{categoryCatalog, locationCatalog} {
		mux.Handle("GET "+c.path, s.requireAdmin(s.CatalogPage(c)))
		mux.Handle("POST "+c.path, s.requireAdmin(s.CatalogCreate(c)))
		mux.Handle("POST "+c.path+"/{id}", s.requireAdmin(s.CatalogUpdate(c)))
		mux.Handle("POST "+c.path+"/{id}/delete", s.requireAdmin(s.CatalogDelete(c)))
	}

	mux.Handle("GET /admin/settings", s.requireAdmin(s.SettingsPage))
	mux.Handle("POST /admin/settings", s.requireAdmin(s.SettingsSubmit))
	mux.Handle("POST /admin/settings/{key}/delete", s.requireAdmin(s.SettingDeleteSubmit))

	mux.Handle("GET /admin/statistics", s.requireAdmin(s.Statistics))
	mux.Handle("GET /admin/activity", s.requireAdmin(s.ActivityLog))
	mux.Handle("GET /admin/search", s.requireAdmin(s.AdminSearch))
	mux.Handle("POST /admin/expire", s.requireAdmin(s.ExpireItems))
	mux.Handle("GET /metrics", s.requireAdmin(metrics.Handler().ServeHTTP))

	// Anything else gets the portal's 404 page.
	mux.HandleFunc("/", s.notFound)

	return SessionMiddleware(jwtSecret, db, opts.CookieSecure)(mux), nil
}
