package web

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// Pager drives the pagination partial.
type Pager struct {
	Page  int
	Pages int
	Total int
	query url.Values
}

func pagerFor[T any](p model.Page[T], query url.Values) Pager {
	return Pager{Page: p.Page, Pages: p.Pages(), Total: p.Total, query: query}
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pager) HasNext() bool { return p.Page < p.Pages }

// PrevURL links to the previous page, preserving the other query parameters.
func (p Pager) PrevURL() string { return p.url(p.Page - 1) }

// NextURL links to the next page.
func (p Pager) NextURL() string { return p.url(p.Page + 1) }

func (p Pager) url(n int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return "?" + q.Encode()
}

// pageParam reads the 1-based page query parameter.
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// pathID parses an integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// pathKind parses the {kind} path value.
func pathKind(r *http.Request) (model.ItemKind, bool) {
	kind, err := model.ParseItemKind(r.PathValue("kind"))
	return kind, err == nil
}

// redirectBack sends the client to the same-origin referring page, or to
// fallback.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = ref.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// clientIP returns the remote host without port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// logActivity records an audit row for the current user. Failures are
// logged and otherwise ignored.
func (s *Server) logActivity(r *http.Request, userID *int64, action, details string) {
	if err := store.LogActivity(r.Context(), s.DB, userID, action, details, clientIP(r)); err != nil {
		slog.Warn("failed to log activity", "action", action, "error", err)
	}
}

// actorID returns the current user's ID for audit rows.
func actorID(r *http.Request) *int64 {
	user := currentUser(r.Context())
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

func dashboardFor(user *model.User) string {
	if user.Role.Can(model.CapAdminister) {
		return "/admin"
	}
	return "/dashboard"
}
