package web

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// catalog adapts the categories and locations tables to one set of
// handlers. Both share the same columns.
type catalog struct {
	noun   string
	plural string
	path   string
	list   func(ctx context.Context, db *sql.DB) ([]model.Category, error)
	create func(ctx context.Context, db *sql.DB, name, description string) (int64, error)
	update func(ctx context.Context, db *sql.DB, id int64, name, description string, active bool) error
	remove func(ctx context.Context, db *sql.DB, id int64) error
	taken  func(ctx context.Context, db *sql.DB, name string, exceptID int64) (bool, error)
}

var categoryCatalog = &catalog{
	noun:   "Category",
	plural: "Categories",
	path:   "/admin/categories",
	list: func(ctx context.Context, db *sql.DB) ([]model.Category, error) {
		return store.ListCategories(ctx, db, false)
	},
	create: func(ctx context.Context, db *sql.DB, name, description string) (int64, error) {
		c, err := store.CreateCategory(ctx, db, name, description)
		if err != nil {
			return 0, err
		}
		return c.ID, nil
	},
	update: store.UpdateCategory,
	remove: store.DeleteCategory,
	taken:  store.CategoryNameTaken,
}

var locationCatalog = &catalog{
	noun:   "Location",
	plural: "Locations",
	path:   "/admin/locations",
	list: func(ctx context.Context, db *sql.DB) ([]model.Category, error) {
		locations, err := store.ListLocations(ctx, db, false)
		entries := make([]model.Category, len(locations))
		for i, l := range locations {
			entries[i] = model.Category(l)
		}
		return entries, err
	},
	create: func(ctx context.Context, db *sql.DB, name, description string) (int64, error) {
		l, err := store.CreateLocation(ctx, db, name, description)
		if err != nil {
			return 0, err
		}
		return l.ID, nil
	},
	update: store.UpdateLocation,
	remove: store.DeleteLocation,
	taken:  store.LocationNameTaken,
}

type catalogPage struct {
	PageData
	Noun    string
	Path    string
	Entries []model.Category
	Form    catalogForm
}

func (s *Server) renderCatalog(w http.ResponseWriter, r *http.Request, c *catalog, data *catalogPage) {
	entries, err := c.list(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list catalog", "catalog", c.path, "error", err)
	}
	data.Noun, data.Path, data.Entries = c.noun, c.path, entries
	s.Templates.Render(w, "admin_catalog.html", data)
}

// CatalogPage returns the handler for GET /admin/categories and
// GET /admin/locations.
func (s *Server) CatalogPage(c *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderCatalog(w, r, c, &catalogPage{
			PageData: s.page(w, r, "Manage "+c.plural),
			Form:     catalogForm{Active: true},
		})
	}
}

// CatalogCreate returns the handler that adds an entry.
func (s *Server) CatalogCreate(c *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := currentUser(ctx)

		var form catalogForm
		bindForm(r, &form)
		data := &catalogPage{PageData: s.page(w, r, "Manage "+c.plural), Form: form}
		if errs := checkForm(&form); errs != nil {
			data.Errors = errs
			s.renderCatalog(w, r, c, data)
			return
		}
		if taken, err := c.taken(ctx, s.DB, form.Name, 0); err != nil || taken {
			if err != nil {
				slog.Error("failed to check catalog name", "error", err)
			}
			data.Errors = map[string]string{"name": c.noun + " already exists."}
			s.renderCatalog(w, r, c, data)
			return
		}

		// New entries start active.
		id, err := c.create(ctx, s.DB, form.Name, form.Description)
		if err == nil && !form.Active {
			err = c.update(ctx, s.DB, id, form.Name, form.Description, false)
		}
		if err != nil {
			slog.Error("failed to create catalog entry", "catalog", c.path, "error", err)
			s.setFlash(w, r, FlashError, "An error occurred while saving the "+strings.ToLower(c.noun)+".")
			http.Redirect(w, r, c.path, http.StatusSeeOther)
			return
		}

		s.logActivity(r, &user.ID, "add_"+strings.ToLower(c.noun), fmt.Sprintf("Added %s: %s", strings.ToLower(c.noun), form.Name))
		s.setFlash(w, r, FlashSuccess, c.noun+" added successfully!")
		http.Redirect(w, r, c.path, http.StatusSeeOther)
	}
}

// CatalogUpdate returns the handler for POST {path}/{id}.
func (s *Server) CatalogUpdate(c *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := currentUser(ctx)
		id, ok := pathID(r, "id")
		if !ok {
			s.notFound(w, r)
			return
		}

		var form catalogForm
		bindForm(r, &form)
		if errs := checkForm(&form); errs != nil {
			s.setFlash(w, r, FlashError, "Invalid form data")
			http.Redirect(w, r, c.path, http.StatusSeeOther)
			return
		}
		if taken, err := c.taken(ctx, s.DB, form.Name, id); err != nil || taken {
			if err != nil {
				slog.Error("failed to check catalog name", "error", err)
			}
			s.setFlash(w, r, FlashError, c.noun+" already exists.")
			http.Redirect(w, r, c.path, http.StatusSeeOther)
			return
		}

		if err := c.update(ctx, s.DB, id, form.Name, form.Description, form.Active); err != nil {
			slog.Error("failed to update catalog entry", "catalog", c.path, "id", id, "error", err)
			s.setFlash(w, r, FlashError, "An error occurred while saving the "+strings.ToLower(c.noun)+".")
		} else {
			s.logActivity(r, &user.ID, "edit_"+strings.ToLower(c.noun), fmt.Sprintf("Updated %s %d", strings.ToLower(c.noun), id))
			s.setFlash(w, r, FlashSuccess, c.noun+" updated successfully!")
		}
		http.Redirect(w, r, c.path, http.StatusSeeOther)
	}
}

// CatalogDelete returns the handler for POST {path}/{id}/delete.
func (s *Server) CatalogDelete(c *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			s.notFound(w, r)
			return
		}

		if err := c.remove(r.Context(), s.DB, id); err != nil {
			slog.Error("failed to delete catalog entry", "catalog", c.path, "id", id, "error", err)
			s.setFlash(w, r, FlashError, "An error occurred while deleting the "+strings.ToLower(c.noun)+".")
		} else {
			s.logActivity(r, &user.ID, "delete_"+strings.ToLower(c.noun), fmt.Sprintf("Deleted %s %d", strings.ToLower(c.noun), id))
			s.setFlash(w, r, FlashSuccess, c.noun+" deleted successfully!")
		}
		http.Redirect(w, r, c.path, http.StatusSeeOther)
	}
}
