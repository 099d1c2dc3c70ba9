package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/photos"
	"github.com/erazemk/lostfound/internal/store"
)

const homeRecent = 6

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lost, err := store.RecentActiveItems(ctx, s.DB, model.KindLost, homeRecent)
	if err != nil {
		slog.Error("failed to list recent lost items", "error", err)
	}
	found, err := store.RecentActiveItems(ctx, s.DB, model.KindFound, homeRecent)
	if err != nil {
		slog.Error("failed to list recent found items", "error", err)
	}

	s.Templates.Render(w, "home.html", &struct {
		PageData
		Lost  []model.Item
		Found []model.Item
	}{
		PageData: s.page(w, r, "Home"),
		Lost:     lost,
		Found:    found,
	})
}

type browsePage struct {
	PageData
	Kind       model.ItemKind
	Items      []model.Item
	Pager      Pager
	Categories []model.Category
	Category   string
	Query      string
}

// Browse returns the handler for GET /lost-items and GET /found-items.
func (s *Server) Browse(kind model.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		category, query := q.Get("category"), q.Get("query")
		if category == "all" {
			category = ""
		}

		result, err := store.ListActiveItems(r.Context(), s.DB, kind, category, query, pageParam(r))
		if err != nil {
			slog.Error("failed to list items", "kind", kind, "error", err)
		}
		categories, err := store.ListCategories(r.Context(), s.DB, true)
		if err != nil {
			slog.Error("failed to list categories", "error", err)
		}

		s.Templates.Render(w, "browse.html", &browsePage{
			PageData:   s.page(w, r, "Browse "+kind.Title()+" Items"),
			Kind:       kind,
			Items:      result.Items,
			Pager:      pagerFor(result, url.Values{"category": {category}, "query": {query}}),
			Categories: categories,
			Category:   category,
			Query:      query,
		})
	}
}

// ItemDetail handles GET /items/{kind}/{id}.
func (s *Server) ItemDetail(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	id, okID := pathID(r, "id")
	if !ok || !okID {
		s.notFound(w, r)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, kind, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		s.notFound(w, r)
		return
	}

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item *model.Item
	}{
		PageData: s.page(w, r, item.Name),
		Item:     item,
	})
}

type searchPage struct {
	PageData
	Query      string
	Category   string
	ItemType   string
	Categories []model.Category
	Lost       []model.Item
	Found      []model.Item
	Pager      Pager
	Searched   bool
}

// Search handles GET /search across active lost and found reports.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	data := &searchPage{
		PageData: s.page(w, r, "Search Items"),
		Query:    q.Get("query"),
		Category: q.Get("category"),
		ItemType: q.Get("item_type"),
	}
	if data.Category == "all" {
		data.Category = ""
	}
	if data.ItemType != string(model.KindLost) && data.ItemType != string(model.KindFound) {
		data.ItemType = "all"
	}

	categories, err := store.ListCategories(ctx, s.DB, true)
	if err != nil {
		slog.Error("failed to list categories", "error", err)
	}
	data.Categories = categories

	if data.Query != "" || data.Category != "" || q.Has("item_type") {
		data.Searched = true
		page := pageParam(r)
		pagerQuery := url.Values{"query": {data.Query}, "category": {data.Category}, "item_type": {data.ItemType}}
		for _, kind := range []model.ItemKind{model.KindLost, model.KindFound} {
			if data.ItemType != "all" && data.ItemType != string(kind) {
				continue
			}
			result, err := store.ListActiveItems(ctx, s.DB, kind, data.Category, data.Query, page)
			if err != nil {
				slog.Error("failed to search items", "kind", kind, "error", err)
				continue
			}
			if kind == model.KindLost {
				data.Lost = result.Items
			} else {
				data.Found = result.Items
			}
			// Both kinds share one page number; the longer list sets the bound.
			if p := pagerFor(result, pagerQuery); p.Pages >= data.Pager.Pages {
				data.Pager = p
			}
		}
	}

	s.Templates.Render(w, "search.html", data)
}

// Upload handles GET /uploads/{name}.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	path, err := s.Photos.Path(r.PathValue("name"))
	if errors.Is(err, photos.ErrInvalidName) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to resolve photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}
