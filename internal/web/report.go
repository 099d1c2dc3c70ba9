package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// multipartOverhead is allowed on top of the photo size for the other
// form fields.
const multipartOverhead = 1 << 20

// WithMeCurrentLocation is the current-location option for finders who
// kept the item.
const WithMeCurrentLocation = "I have it with me"

type reportPage struct {
	PageData
	Kind       model.ItemKind
	Form       reportForm
	Categories []model.Category
	Locations  []model.Location
	WithMe     string
}

func (s *Server) reportPage(w http.ResponseWriter, r *http.Request, kind model.ItemKind, form reportForm) *reportPage {
	categories, err := store.ListCategories(r.Context(), s.DB, true)
	if err != nil {
		slog.Error("failed to list categories", "error", err)
	}
	locations, err := store.ListLocations(r.Context(), s.DB, true)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}
	return &reportPage{
		PageData:   s.page(w, r, "Report "+kind.Title()+" Item"),
		Kind:       kind,
		Form:       form,
		Categories: categories,
		Locations:  locations,
		WithMe:     WithMeCurrentLocation,
	}
}

// ReportPage handles GET /report/{kind}.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	user := currentUser(r.Context())
	s.Templates.Render(w, "report.html", s.reportPage(w, r, kind, reportForm{StudentEmail: user.Email}))
}

// ReportSubmit handles POST /report/{kind}: a multipart form with an
// optional photo.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	ctx := r.Context()
	user := currentUser(ctx)

	maxPhoto, err := store.GetIntSetting(ctx, s.DB, model.SettingMaxPhotoSize, int(s.MaxPhotoBytes))
	if err != nil {
		slog.Warn("failed to read photo size setting", "error", err)
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(maxPhoto)+multipartOverhead)
	if err := r.ParseMultipartForm(int64(maxPhoto) + multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		data := s.reportPage(w, r, kind, reportForm{})
		data.Errors = map[string]string{"photo": "The upload is too large."}
		s.Templates.RenderStatus(w, http.StatusRequestEntityTooLarge, "report.html", data)
		return
	}

	var form reportForm
	bindForm(r, &form)
	if kind == model.KindLost {
		form.CurrentLocation = ""
	}
	data := s.reportPage(w, r, kind, form)

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.Templates.Render(w, "report.html", data)
		return
	}

	photo, problem := s.savePhoto(r, int64(maxPhoto))
	if problem != "" {
		data.Errors = map[string]string{"photo": problem}
		s.Templates.Render(w, "report.html", data)
		return
	}

	item, err := store.CreateItem(ctx, s.DB, &model.Item{
		Kind:            kind,
		Name:            form.ItemName,
		Category:        form.Category,
		Description:     form.Description,
		Location:        form.Location,
		CurrentLocation: form.CurrentLocation,
		ReporterName:    form.FullNames,
		StudentNumber:   form.StudentNumber,
		StudentEmail:    form.StudentEmail,
		PhotoFilename:   photo,
	})
	if err != nil {
		slog.Error("failed to create item", "kind", kind, "error", err)
		if err := s.Photos.Remove(photo); err != nil {
			slog.Warn("failed to remove orphaned photo", "photo", photo, "error", err)
		}
		data.Flash = &Flash{Kind: FlashError, Message: "An error occurred while saving your report. Please try again."}
		s.Templates.Render(w, "report.html", data)
		return
	}

	metrics.ItemsReported.WithLabelValues(string(kind)).Inc()
	s.logActivity(r, &user.ID, "report_"+string(kind)+"_item", fmt.Sprintf("Reported %s item: %s", kind, item.Name))
	slog.Info("item reported", "user", user.Username, "kind", kind, "item", item.Name)

	s.setFlash(w, r, FlashSuccess, kind.Title()+" item reported successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// savePhoto stores the optional "photo" upload and returns its name, or
// "" when no photo was sent. A non-empty problem is shown to the user.
func (s *Server) savePhoto(r *http.Request, maxBytes int64) (name, problem string) {
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", ""
	}
	if err != nil {
		return "", "Could not read the uploaded photo."
	}
	defer file.Close()

	if header.Size > maxBytes {
		return "", fmt.Sprintf("Photos may be at most %d KB.", maxBytes>>10)
	}

	allowed, _, err := store.GetSetting(r.Context(), s.DB, model.SettingAllowedPhotoTypes)
	if err != nil {
		slog.Warn("failed to read photo types setting", "error", err)
	}
	processed, err := imaging.NewProcessor(allowed).Process(file)
	if err != nil {
		slog.Warn("rejected photo upload", "filename", header.Filename, "error", err)
		return "", "Upload a JPEG, PNG or GIF image."
	}

	name, err = s.Photos.Save(header.Filename, processed.Data)
	if err != nil {
		slog.Error("failed to save photo", "error", err)
		return "", "Could not store the uploaded photo."
	}
	return name, ""
}

type claimPage struct {
	PageData
	Form claimForm
	Item *model.Item
}

// ClaimPage handles GET /claim, prefilled from item_type and item_id.
func (s *Server) ClaimPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	q := r.URL.Query()
	form := claimForm{StudentEmail: user.Email, ItemType: q.Get("item_type"), ItemID: q.Get("item_id")}
	if form.ItemType == "" {
		form.ItemType = string(model.KindFound)
	}
	data := &claimPage{PageData: s.page(w, r, "Claim"), Form: form}
	data.Item = s.claimTarget(r, form)
	s.Templates.Render(w, "claim.html", data)
}

// ClaimSubmit handles POST /claim.
func (s *Server) ClaimSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	var form claimForm
	bindForm(r, &form)
	data := &claimPage{PageData: s.page(w, r, "Claim"), Form: form}
	data.Item = s.claimTarget(r, form)

	if errs := checkForm(&form); errs != nil {
		data.Errors = errs
		s.Templates.Render(w, "claim.html", data)
		return
	}
	ref, err := model.ParseItemRef(form.ItemType, form.ItemID)
	if err != nil {
		data.Errors = map[string]string{"item_id": "Invalid item reference."}
		s.Templates.Render(w, "claim.html", data)
		return
	}

	claim, err := store.CreateClaim(ctx, s.DB, &model.Claim{
		ClaimantName:  form.FullNames,
		StudentNumber: form.StudentNumber,
		StudentEmail:  form.StudentEmail,
		Description:   form.Description,
		Item:          ref,
	})
	if errors.Is(err, store.ErrItemNotFound) {
		data.Errors = map[string]string{"item_id": "The selected item does not exist."}
		s.Templates.Render(w, "claim.html", data)
		return
	}
	if err != nil {
		slog.Error("failed to create claim", "error", err)
		data.Flash = &Flash{Kind: FlashError, Message: "An error occurred while submitting your claim. Please try again."}
		s.Templates.Render(w, "claim.html", data)
		return
	}

	metrics.ClaimsSubmitted.Inc()
	s.logActivity(r, &user.ID, "submit_claim", fmt.Sprintf("Submitted claim #%d for %s", claim.ID, ref))
	slog.Info("claim submitted", "user", user.Username, "claim", claim.ID, "item", ref.String())

	s.setFlash(w, r, FlashSuccess, "Claim submitted successfully! Admin will review your claim.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// claimTarget loads the item a claim form points at, if any.
func (s *Server) claimTarget(r *http.Request, form claimForm) *model.Item {
	ref, err := model.ParseItemRef(form.ItemType, form.ItemID)
	if err != nil || ref.IsNone() {
		return nil
	}
	item, err := store.GetItem(r.Context(), s.DB, ref.Kind(), ref.ID())
	if err != nil {
		slog.Error("failed to load claim target", "item", ref.String(), "error", err)
	}
	return item
}
