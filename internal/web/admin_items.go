package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type adminItemsPage struct {
	PageData
	Kind       model.ItemKind
	Items      []model.Item
	Pager      Pager
	Categories []model.Category
	Status     string
	Category   string
	Query      string
	Sort       model.Sort
}

// AdminItems handles GET /admin/items/{kind}.
func (s *Server) AdminItems(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	ctx := r.Context()
	q := r.URL.Query()

	data := &adminItemsPage{
		PageData: s.page(w, r, "Manage "+kind.Title()+" Items"),
		Kind:     kind,
		Category: q.Get("category"),
		Query:    q.Get("query"),
		Sort:     model.ParseItemSort(q.Get("sort"), q.Get("order")),
	}
	filter := store.ItemFilter{Category: data.Category, Query: data.Query, Reporter: true}
	if status, err := model.ParseItemStatus(q.Get("status")); err == nil {
		filter.Status = status
		data.Status = string(status)
	}

	result, err := store.ListItems(ctx, s.DB, kind, filter, data.Sort, pageParam(r), model.PerPageAdmin)
	if err != nil {
		slog.Error("failed to list items", "kind", kind, "error", err)
	}
	data.Items = result.Items
	data.Pager = pagerFor(result, url.Values{
		"status":   {data.Status},
		"category": {data.Category},
		"query":    {data.Query},
		"sort":     {string(data.Sort.Key)},
		"order":    {string(data.Sort.Order)},
	})

	if data.Categories, err = store.ListCategories(ctx, s.DB, false); err != nil {
		slog.Error("failed to list categories", "error", err)
	}

	s.Templates.Render(w, "admin_items.html", data)
}

type editItemPage struct {
	PageData
	Item       *model.Item
	Form       editItemForm
	Categories []model.Category
	Locations  []model.Location
}

func (s *Server) editItemPage(w http.ResponseWriter, r *http.Request, item *model.Item, form editItemForm) *editItemPage {
	categories, err := store.ListCategories(r.Context(), s.DB, false)
	if err != nil {
		slog.Error("failed to list categories", "error", err)
	}
	locations, err := store.ListLocations(r.Context(), s.DB, false)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}
	return &editItemPage{
		PageData:   s.page(w, r, "Edit "+item.Kind.Title()+" Item"),
		Item:       item,
		Form:       form,
		Categories: categories,
		Locations:  locations,
	}
}

// loadItem resolves {kind}/{id} or renders the 404 page.
func (s *Server) loadItem(w http.ResponseWriter, r *http.Request) *model.Item {
	kind, ok := pathKind(r)
	id, okID := pathID(r, "id")
	if !ok || !okID {
		s.notFound(w, r)
		return nil
	}
	item, err := store.GetItem(r.Context(), s.DB, kind, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	if item == nil {
		s.notFound(w, r)
	}
	return item
}

// EditItemPage handles GET /admin/items/{kind}/{id}/edit.
func (s *Server) EditItemPage(w http.ResponseWriter, r *http.Request) {
	item := s.loadItem(w, r)
	if item == nil {
		return
	}
	form := editItemForm{
		ItemName:        item.Name,
		Category:        item.Category,
		Description:     item.Description,
		Location:        item.Location,
		CurrentLocation: item.CurrentLocation,
		Status:          string(item.Status),
		Verified:        item.Verified,
	}
	if item.ExpiresAt != nil {
		form.ExpiresAt = item.ExpiresAt.Format(time.DateOnly)
	}
	s.Templates.Render(w, "admin_item_edit.html", s.editItemPage(w, r, item, form))
}

// EditItemSubmit handles POST /admin/items/{kind}/{id}/edit.
func (s *Server) EditItemSubmit(w http.ResponseWriter, r *http.Request) {
	item := s.loadItem(w, r)
	if item == nil {
		return
	}
	user := currentUser(r.Context())

	var form editItemForm
	bindForm(r, &form)
	data := s.editItemPage(w, r, item, form)
	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.Templates.Render(w, "admin_item_edit.html", data)
		return
	}

	item.Name = form.ItemName
	item.Category = form.Category
	item.Description = form.Description
	item.Location = form.Location
	item.CurrentLocation = form.CurrentLocation
	if item.Kind == model.KindLost {
		item.CurrentLocation = ""
	}
	item.Status, _ = model.ParseItemStatus(form.Status)
	item.Verified = form.Verified
	item.ExpiresAt = nil
	if form.ExpiresAt != "" {
		t, _ := time.Parse(time.DateOnly, form.ExpiresAt)
		item.ExpiresAt = &t
	}

	if err := store.UpdateItem(r.Context(), s.DB, item); err != nil {
		slog.Error("failed to update item", "kind", item.Kind, "id", item.ID, "error", err)
		data.Flash = &Flash{Kind: FlashError, Message: "An error occurred while updating the item."}
		s.Templates.Render(w, "admin_item_edit.html", data)
		return
	}

	s.logActivity(r, &user.ID, "edit_item", fmt.Sprintf("Edited %s item %d", item.Kind, item.ID))
	slog.Info("item updated", "user", user.Username, "kind", item.Kind, "id", item.ID)
	s.setFlash(w, r, FlashSuccess, item.Kind.Title()+" item updated successfully!")
	http.Redirect(w, r, "/admin/items/"+string(item.Kind), http.StatusSeeOther)
}

// ItemStatusSubmit handles POST /admin/items/{kind}/{id}/status. Any status
// may follow any other.
func (s *Server) ItemStatusSubmit(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	id, okID := pathID(r, "id")
	if !ok || !okID {
		s.notFound(w, r)
		return
	}
	user := currentUser(r.Context())
	fallback := "/admin/items/" + string(kind)

	status, err := model.ParseItemStatus(r.PostFormValue("status"))
	if err != nil {
		s.setFlash(w, r, FlashError, "Invalid form data")
		redirectBack(w, r, fallback)
		return
	}

	found, err := store.SetItemStatus(r.Context(), s.DB, kind, id, status)
	switch {
	case err != nil:
		slog.Error("failed to set item status", "kind", kind, "id", id, "error", err)
		s.setFlash(w, r, FlashError, "An error occurred while updating the item status.")
	case !found:
		s.setFlash(w, r, FlashError, kind.Title()+" item not found.")
	default:
		s.logActivity(r, &user.ID, "update_item_status", fmt.Sprintf("Updated %s item %d status to %s", kind, id, status))
		s.setFlash(w, r, FlashSuccess, kind.Title()+" item status updated successfully!")
	}
	redirectBack(w, r, fallback)
}

// ItemDeleteSubmit handles POST /admin/items/{kind}/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	id, okID := pathID(r, "id")
	if !ok || !okID {
		s.notFound(w, r)
		return
	}
	user := currentUser(r.Context())
	fallback := "/admin/items/" + string(kind)

	photo, found, err := store.DeleteItem(r.Context(), s.DB, kind, id)
	if err != nil {
		slog.Error("failed to delete item", "kind", kind, "id", id, "error", err)
		s.setFlash(w, r, FlashError, "An error occurred while deleting the item.")
		redirectBack(w, r, fallback)
		return
	}
	if !found {
		s.setFlash(w, r, FlashError, kind.Title()+" item not found.")
		redirectBack(w, r, fallback)
		return
	}
	if err := s.Photos.Remove(photo); err != nil {
		slog.Warn("failed to remove photo", "photo", photo, "error", err)
	}

	s.logActivity(r, &user.ID, "delete_item", fmt.Sprintf("Deleted %s item %d", kind, id))
	slog.Info("item deleted", "user", user.Username, "kind", kind, "id", id)
	s.setFlash(w, r, FlashSuccess, kind.Title()+" item deleted successfully!")
	redirectBack(w, r, fallback)
}

// BulkSubmit handles POST /admin/items/{kind}/bulk. Selected ids arrive as
// repeated item_id checkboxes or a comma-separated item_ids field.
func (s *Server) BulkSubmit(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	user := currentUser(r.Context())
	fallback := "/admin/items/" + string(kind)

	action, err := model.ParseBulkAction(r.PostFormValue("action"))
	if err != nil {
		s.setFlash(w, r, FlashError, "Invalid bulk action.")
		redirectBack(w, r, fallback)
		return
	}
	ids := selectedIDs(r)
	if len(ids) == 0 {
		s.setFlash(w, r, FlashError, "No items selected.")
		redirectBack(w, r, fallback)
		return
	}

	result, err := store.ApplyBulkAction(r.Context(), s.DB, kind, action, ids)
	if err != nil {
		slog.Error("bulk action failed", "kind", kind, "action", action, "error", err)
		s.setFlash(w, r, FlashError, "An error occurred while applying the bulk action.")
		redirectBack(w, r, fallback)
		return
	}
	for _, photo := range result.Photos {
		if err := s.Photos.Remove(photo); err != nil {
			slog.Warn("failed to remove photo", "photo", photo, "error", err)
		}
	}

	metrics.BulkActions.WithLabelValues(string(action)).Add(float64(result.Count))
	s.logActivity(r, &user.ID, "bulk_action", fmt.Sprintf("Applied %s to %d %s items", action, result.Count, kind))
	slog.Info("bulk action applied", "user", user.Username, "kind", kind, "action", action, "count", result.Count)
	s.setFlash(w, r, FlashSuccess, fmt.Sprintf("Bulk action %q applied to %d items successfully!", action, result.Count))
	redirectBack(w, r, fallback)
}

// selectedIDs collects distinct positive ids from the bulk form. Malformed
// entries are skipped.
func selectedIDs(r *http.Request) []int64 {
	if err := r.ParseForm(); err != nil {
		return nil
	}
	raw := append([]string{}, r.PostForm["item_id"]...)
	raw = append(raw, strings.Split(r.PostFormValue("item_ids"), ",")...)

	seen := make(map[int64]bool)
	var ids []int64
	for _, v := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
