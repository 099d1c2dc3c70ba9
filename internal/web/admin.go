package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

const adminRecent = 5

// AdminDashboard handles GET /admin.
func (s *Server) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := store.GetStats(ctx, s.DB)
	if err != nil {
		slog.Error("failed to get statistics", "error", err)
		stats = &model.Stats{}
	}
	pending, err := store.ListClaims(ctx, s.DB, store.ClaimFilter{Status: model.ClaimPending}, model.DefaultSort, 1)
	if err != nil {
		slog.Error("failed to list pending claims", "error", err)
	}
	lost, err := store.RecentActiveItems(ctx, s.DB, model.KindLost, adminRecent)
	if err != nil {
		slog.Error("failed to list recent lost items", "error", err)
	}
	found, err := store.RecentActiveItems(ctx, s.DB, model.KindFound, adminRecent)
	if err != nil {
		slog.Error("failed to list recent found items", "error", err)
	}

	s.Templates.Render(w, "admin_dashboard.html", &struct {
		PageData
		Stats   *model.Stats
		Pending []model.Claim
		Lost    []model.Item
		Found   []model.Item
	}{
		PageData: s.page(w, r, "Admin Dashboard"),
		Stats:    stats,
		Pending:  limit(pending.Items, adminRecent),
		Lost:     lost,
		Found:    found,
	})
}

// Statistics handles GET /admin/statistics.
func (s *Server) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to get statistics", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "admin_statistics.html", &struct {
		PageData
		Stats *model.Stats
	}{
		PageData: s.page(w, r, "Statistics"),
		Stats:    stats,
	})
}

// ActivityLog handles GET /admin/activity.
func (s *Server) ActivityLog(w http.ResponseWriter, r *http.Request) {
	result, err := store.ListActivity(r.Context(), s.DB, pageParam(r))
	if err != nil {
		slog.Error("failed to list activity", "error", err)
	}

	s.Templates.Render(w, "admin_activity.html", &struct {
		PageData
		Activity []model.Activity
		Pager    Pager
	}{
		PageData: s.page(w, r, "Activity Logs"),
		Activity: result.Items,
		Pager:    pagerFor(result, url.Values{}),
	})
}

// Search types for the admin search page.
const (
	searchItems  = "items"
	searchUsers  = "users"
	searchClaims = "claims"
)

type adminSearchPage struct {
	PageData
	Query      string
	SearchType string
	Lost       []model.Item
	Found      []model.Item
	Users      []model.User
	Claims     []model.Claim
	Searched   bool
}

// AdminSearch handles GET /admin/search. Unlike the public search it
// covers every status and matches reporter and claimant details too.
func (s *Server) AdminSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	data := &adminSearchPage{
		PageData:   s.page(w, r, "Admin Search"),
		Query:      q.Get("query"),
		SearchType: q.Get("search_type"),
	}
	if data.SearchType != searchUsers && data.SearchType != searchClaims {
		data.SearchType = searchItems
	}

	if data.Query != "" {
		data.Searched = true
		page := pageParam(r)
		switch data.SearchType {
		case searchItems:
			filter := store.ItemFilter{Query: data.Query, Reporter: true}
			lost, err := store.ListItems(ctx, s.DB, model.KindLost, filter, model.DefaultSort, page, model.PerPageAdmin)
			if err != nil {
				slog.Error("failed to search lost items", "error", err)
			}
			found, err := store.ListItems(ctx, s.DB, model.KindFound, filter, model.DefaultSort, page, model.PerPageAdmin)
			if err != nil {
				slog.Error("failed to search found items", "error", err)
			}
			data.Lost, data.Found = lost.Items, found.Items
		case searchUsers:
			users, err := store.SearchUsers(ctx, s.DB, data.Query, page)
			if err != nil {
				slog.Error("failed to search users", "error", err)
			}
			data.Users = users.Items
		case searchClaims:
			claims, err := store.ListClaims(ctx, s.DB, store.ClaimFilter{Query: data.Query}, model.DefaultSort, page)
			if err != nil {
				slog.Error("failed to search claims", "error", err)
			}
			data.Claims = claims.Items
		}
	}

	s.Templates.Render(w, "admin_search.html", data)
}

// ExpireItems handles POST /admin/expire: active reports older than the
// item_expiry_days setting become expired, as do reports past their own
// expires_at. The threshold is seeded as 30 days and falls back to 30 when
// the setting is missing or not a positive number; admins may change it.
func (s *Server) ExpireItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	days, err := store.GetIntSetting(ctx, s.DB, model.SettingItemExpiryDays, model.DefaultExpiryDays)
	if err != nil {
		slog.Warn("failed to read expiry setting", "error", err)
	}
	now := time.Now()
	cutoff := now.AddDate(0, 0, -days)

	result, err := store.ExpireStaleItems(ctx, s.DB, cutoff, now)
	if err != nil {
		slog.Error("failed to expire items", "error", err)
		s.setFlash(w, r, FlashError, "An error occurred while expiring items.")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	metrics.ItemsExpired.WithLabelValues(string(model.KindLost)).Add(float64(result.Lost))
	metrics.ItemsExpired.WithLabelValues(string(model.KindFound)).Add(float64(result.Found))
	msg := fmt.Sprintf("Expired %d lost items and %d found items successfully!", result.Lost, result.Found)
	s.logActivity(r, &user.ID, "expire_old_items", msg)
	slog.Info("expired stale items", "user", user.Username, "lost", result.Lost, "found", result.Found, "days", days)

	s.setFlash(w, r, FlashSuccess, msg)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
