package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Photos *photos.Store
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type bulkRequest struct {
	Action string  `json:"action"`
	IDs    []int64 `json:"ids"`
}

type bulkResponse struct {
	Action model.BulkAction `json:"action"`
	Count  int              `json:"count"`
}

func itemKind(w http.ResponseWriter, r *http.Request) (model.ItemKind, bool) {
	kind, err := model.ParseItemKind(r.PathValue("kind"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "unknown item kind")
		return "", false
	}
	return kind, true
}

// List handles GET /api/items. Only active reports are listed; kind
// defaults to lost.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := model.KindLost
	if k := q.Get("kind"); k != "" {
		var err error
		if kind, err = model.ParseItemKind(k); err != nil {
			jsonError(w, http.StatusBadRequest, "kind must be lost or found")
			return
		}
	}

	page, err := store.ListActiveItems(r.Context(), h.DB, kind, q.Get("category"), q.Get("query"), pageParam(r))
	if err != nil {
		slog.Error("failed to list items", "kind", kind, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if page.Items == nil {
		page.Items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, page)
}

// Get handles GET /api/items/{kind}/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, kind, id)
	if err != nil {
		slog.Error("failed to get item", "kind", kind, "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// AdminList handles GET /api/admin/items/{kind}: every status, with the
// admin filters and sorting.
func (h *ItemsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	filter := store.ItemFilter{Category: q.Get("category"), Query: q.Get("query"), Reporter: true}
	if s := q.Get("status"); s != "" {
		status, err := model.ParseItemStatus(s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = status
	}
	sort := model.ParseItemSort(q.Get("sort"), q.Get("order"))

	page, err := store.ListItems(r.Context(), h.DB, kind, filter, sort, pageParam(r), model.PerPageAdmin)
	if err != nil {
		slog.Error("failed to list items", "kind", kind, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if page.Items == nil {
		page.Items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, page)
}

// SetStatus handles PUT /api/admin/items/{kind}/{id}/status.
func (h *ItemsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := model.ParseItemStatus(req.Status)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	found, err := store.SetItemStatus(r.Context(), h.DB, kind, id, status)
	if err != nil {
		slog.Error("failed to set item status", "kind", kind, "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	user := GetUser(r.Context())
	logActivity(r, h.DB, &user.ID, "update_item_status", "Updated "+string(kind)+" item status to "+string(status))
	slog.Info("item status changed", "user", user.Username, "kind", kind, "id", id, "status", status)

	item, err := store.GetItem(r.Context(), h.DB, kind, id)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Bulk handles POST /api/admin/items/{kind}/bulk.
func (h *ItemsHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	kind, ok := itemKind(w, r)
	if !ok {
		return
	}

	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := model.ParseBulkAction(req.Action)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid bulk action")
		return
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "no items selected")
		return
	}

	result, err := store.ApplyBulkAction(r.Context(), h.DB, kind, action, req.IDs)
	if errors.Is(err, store.ErrInvalidAction) {
		jsonError(w, http.StatusBadRequest, "invalid bulk action")
		return
	}
	if err != nil {
		slog.Error("bulk action failed", "kind", kind, "action", action, "error", err)
		jsonError(w, http.StatusInternalServerError, "bulk action failed")
		return
	}
	if h.Photos != nil {
		for _, photo := range result.Photos {
			if err := h.Photos.Remove(photo); err != nil {
				slog.Warn("failed to remove photo", "photo", photo, "error", err)
			}
		}
	}

	user := GetUser(r.Context())
	metrics.BulkActions.WithLabelValues(string(action)).Inc()
	logActivity(r, h.DB, &user.ID, "bulk_"+string(action), "Bulk "+string(action)+" on "+string(kind)+" items via API")
	slog.Info("bulk action applied", "user", user.Username, "kind", kind, "action", action, "count", result.Count)

	jsonResponse(w, http.StatusOK, bulkResponse{Action: action, Count: result.Count})
}
