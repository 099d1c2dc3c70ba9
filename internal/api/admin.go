package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AdminHandler handles admin reporting and maintenance endpoints.
type AdminHandler struct {
	DB *sql.DB
}

type expireResponse struct {
	Lost  int `json:"lost"`
	Found int `json:"found"`
	Days  int `json:"days"`
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to get statistics", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get statistics")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Expire handles POST /api/admin/expire.
func (h *AdminHandler) Expire(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	days, err := store.GetIntSetting(ctx, h.DB, model.SettingItemExpiryDays, model.DefaultExpiryDays)
	if err != nil {
		slog.Warn("failed to read expiry setting", "error", err)
	}
	now := time.Now()

	result, err := store.ExpireStaleItems(ctx, h.DB, now.AddDate(0, 0, -days), now)
	if err != nil {
		slog.Error("failed to expire items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to expire items")
		return
	}

	user := GetUser(ctx)
	metrics.ItemsExpired.WithLabelValues(string(model.KindLost)).Add(float64(result.Lost))
	metrics.ItemsExpired.WithLabelValues(string(model.KindFound)).Add(float64(result.Found))
	logActivity(r, h.DB, &user.ID, "expire_old_items",
		fmt.Sprintf("Expired %d lost items and %d found items via API", result.Lost, result.Found))
	slog.Info("expired stale items", "user", user.Username, "lost", result.Lost, "found", result.Found, "days", days)

	jsonResponse(w, http.StatusOK, expireResponse{Lost: result.Lost, Found: result.Found, Days: days})
}

// Activity handles GET /api/admin/activity.
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	page, err := store.ListActivity(r.Context(), h.DB, pageParam(r))
	if err != nil {
		slog.Error("failed to list activity", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	if page.Items == nil {
		page.Items = []model.Activity{}
	}
	jsonResponse(w, http.StatusOK, page)
}
