package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type settingsPage struct {
	PageData
	Settings []model.Setting
	Form     settingForm
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, data *settingsPage) {
	settings, err := store.ListSettings(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list settings", "error", err)
	}
	data.Settings = settings
	s.Templates.Render(w, "admin_settings.html", data)
}

// SettingsPage handles GET /admin/settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, &settingsPage{PageData: s.page(w, r, "System Settings")})
}

// SettingsSubmit handles POST /admin/settings, creating or replacing one
// setting.
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var form settingForm
	bindForm(r, &form)
	data := &settingsPage{PageData: s.page(w, r, "System Settings"), Form: form}
	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.renderSettings(w, r, data)
		return
	}
	if form.Key == model.SettingJWTSecret {
		data.Errors = map[string]string{"key": "This setting cannot be changed here."}
		s.renderSettings(w, r, data)
		return
	}

	if err := store.SetSetting(r.Context(), s.DB, form.Key, form.Value, form.Description, &user.ID); err != nil {
		slog.Error("failed to save setting", "key", form.Key, "error", err)
		data.Flash = &Flash{Kind: FlashError, Message: "An error occurred while saving the setting."}
		s.renderSettings(w, r, data)
		return
	}

	s.logActivity(r, &user.ID, "update_setting", fmt.Sprintf("Set %s = %s", form.Key, form.Value))
	slog.Info("setting saved", "user", user.Username, "key", form.Key)
	s.setFlash(w, r, FlashSuccess, "Setting saved successfully!")
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

// SettingDeleteSubmit handles POST /admin/settings/{key}/delete.
func (s *Server) SettingDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	key := r.PathValue("key")

	if key == model.SettingJWTSecret {
		s.setFlash(w, r, FlashError, "This setting cannot be deleted.")
	} else if err := store.DeleteSetting(r.Context(), s.DB, key); err != nil {
		slog.Error("failed to delete setting", "key", key, "error", err)
		s.setFlash(w, r, FlashError, "An error occurred while deleting the setting.")
	} else {
		s.logActivity(r, &user.ID, "delete_setting", "Deleted setting "+key)
		s.setFlash(w, r, FlashSuccess, "Setting deleted successfully!")
	}
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}
