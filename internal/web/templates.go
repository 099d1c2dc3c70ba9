package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/ratelimit"
	"github.com/erazemk/lostfound/internal/store"
	webembed "github.com/erazemk/lostfound/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
		"datePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"statusClass": func(status any) string {
			switch fmt.Sprint(status) {
			case "active", "pending":
				return "badge-info"
			case "claimed", "approved", "returned":
				return "badge-ok"
			case "expired", "rejected":
				return "badge-muted"
			default:
				return ""
			}
		},
		"capitalize": func(s any) string {
			str := fmt.Sprint(s)
			if str == "" {
				return str
			}
			return strings.ToUpper(str[:1]) + str[1:]
		},
		"truncate": func(s string, n int) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return string(r[:n]) + "..."
		},
		"deref": func(id *int64) int64 {
			if id == nil {
				return 0
			}
			return *id
		},
		"itemStatuses":  func() []model.ItemStatus { return model.ItemStatuses },
		"claimStatuses": func() []model.ClaimStatus { return model.ClaimStatuses },
		"bulkActions":   func() []model.BulkAction { return model.BulkActions },
		"roles":         func() []model.Role { return model.Roles },
	}
}

var pages = []string{
	"home.html",
	"browse.html",
	"item_detail.html",
	"search.html",
	"login.html",
	"register.html",
	"not_found.html",
	"dashboard.html",
	"profile.html",
	"change_password.html",
	"report.html",
	"claim.html",
	"admin_dashboard.html",
	"admin_items.html",
	"admin_item_edit.html",
	"admin_claims.html",
	"admin_claim_detail.html",
	"admin_statistics.html",
	"admin_users.html",
	"admin_user_form.html",
	"admin_catalog.html",
	"admin_settings.html",
	"admin_activity.html",
	"admin_search.html",
}

// LoadTemplates parses all page templates with the layout and partials.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}
	partialBytes, err := fs.ReadFile(tfs, "partials.html")
	if err != nil {
		return nil, fmt.Errorf("reading partials template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		for _, src := range [][]byte{layoutBytes, partialBytes, pageBytes} {
			if tmpl, err = tmpl.Parse(string(src)); err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", page, err)
			}
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with an explicit status code. Output is
// buffered so a failing template produces a clean 500.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write response", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title    string
	SiteName string
	User     *model.User
	Flash    *Flash
	Errors   map[string]string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Photos    *photos.Store
	Notifier  notify.Notifier
	Limiter   ratelimit.Limiter
	Flashes   *sessions.CookieStore

	CookieSecure     bool
	AllowAdminSignup bool
	MaxPhotoBytes    int64
}

// page builds the base template data for a request, consuming any pending
// flash message.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) PageData {
	return PageData{
		Title:    title,
		SiteName: s.siteName(r),
		User:     currentUser(r.Context()),
		Flash:    s.popFlash(w, r),
	}
}

func (s *Server) siteName(r *http.Request) string {
	name, ok, err := store.GetSetting(r.Context(), s.DB, model.SettingSiteName)
	if err != nil || !ok || name == "" {
		return "Lost and Found Portal"
	}
	return name
}

// notFound renders the generic 404 page.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.Templates.RenderStatus(w, http.StatusNotFound, "not_found.html", s.page(w, r, "Not Found"))
}
