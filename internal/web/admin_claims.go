package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type adminClaimsPage struct {
	PageData
	Claims   []model.Claim
	Pager    Pager
	Status   string
	ItemType string
	Query    string
	Sort     model.Sort
}

// AdminClaims handles GET /admin/claims.
func (s *Server) AdminClaims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := &adminClaimsPage{
		PageData: s.page(w, r, "Manage Claims"),
		Query:    q.Get("query"),
		Sort:     model.ParseClaimSort(q.Get("sort"), q.Get("order")),
	}

	filter := store.ClaimFilter{Query: data.Query}
	if status, err := model.ParseClaimStatus(q.Get("status")); err == nil {
		filter.Status = status
		data.Status = string(status)
	}
	if kind, err := model.ParseItemKind(q.Get("item_type")); err == nil {
		filter.ItemType = kind
		data.ItemType = string(kind)
	}

	result, err := store.ListClaims(r.Context(), s.DB, filter, data.Sort, pageParam(r))
	if err != nil {
		slog.Error("failed to list claims", "error", err)
	}
	data.Claims = result.Items
	data.Pager = pagerFor(result, url.Values{
		"status":    {data.Status},
		"item_type": {data.ItemType},
		"query":     {data.Query},
		"sort":      {string(data.Sort.Key)},
		"order":     {string(data.Sort.Order)},
	})

	s.Templates.Render(w, "admin_claims.html", data)
}

// ClaimDetail handles GET /admin/claims/{id}.
func (s *Server) ClaimDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}

	claim, err := store.GetClaim(ctx, s.DB, id)
	if err != nil {
		slog.Error("failed to get claim", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if claim == nil {
		s.notFound(w, r)
		return
	}

	history, err := store.ListClaimHistory(ctx, s.DB, id)
	if err != nil {
		slog.Error("failed to list claim history", "error", err)
	}
	var item *model.Item
	if !claim.Item.IsNone() {
		if item, err = store.GetItem(ctx, s.DB, claim.Item.Kind(), claim.Item.ID()); err != nil {
			slog.Error("failed to get claimed item", "error", err)
		}
	}

	s.Templates.Render(w, "admin_claim_detail.html", &struct {
		PageData
		Claim   *model.Claim
		Item    *model.Item
		History []model.ClaimHistory
	}{
		PageData: s.page(w, r, "Claim #"+strconv.FormatInt(id, 10)),
		Claim:    claim,
		Item:     item,
		History:  history,
	})
}

// ClaimDecide handles POST /admin/claims/{id}. Approving a claim marks its
// referenced item claimed when that item still exists.
func (s *Server) ClaimDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	fallback := "/admin/claims"

	var form claimDecisionForm
	bindForm(r, &form)
	if errs := checkForm(&form); errs != nil {
		s.setFlash(w, r, FlashError, "Invalid form data")
		redirectBack(w, r, fallback)
		return
	}
	status, err := model.ParseClaimStatus(form.Status)
	if err != nil {
		s.setFlash(w, r, FlashError, "Invalid status selected")
		redirectBack(w, r, fallback)
		return
	}

	decision, err := store.DecideClaim(ctx, s.DB, id, status, form.AdminNotes, user.ID)
	if err != nil {
		slog.Error("claim update failed", "claim", id, "error", err)
		s.setFlash(w, r, FlashError, "An error occurred while updating the claim. Please try again.")
		redirectBack(w, r, fallback)
		return
	}
	if decision == nil {
		s.notFound(w, r)
		return
	}

	metrics.ClaimDecisions.WithLabelValues(string(status)).Inc()
	s.logActivity(r, &user.ID, "update_claim", fmt.Sprintf("Updated claim %d status to %s", id, status))
	slog.Info("claim decided", "user", user.Username, "claim", id, "status", status, "item_claimed", decision.ItemClaimed)

	if status.Resolved() {
		if err := s.Notifier.ClaimDecided(ctx, decision.Claim); err != nil {
			slog.Warn("failed to notify claimant", "claim", id, "error", err)
		}
	}

	s.setFlash(w, r, FlashSuccess, "Claim status updated successfully!")
	redirectBack(w, r, fallback)
}

// ClaimDeleteSubmit handles POST /admin/claims/{id}/delete.
func (s *Server) ClaimDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}

	found, err := store.DeleteClaim(r.Context(), s.DB, id)
	switch {
	case err != nil:
		slog.Error("failed to delete claim", "claim", id, "error", err)
		s.setFlash(w, r, FlashError, "An error occurred while deleting the claim.")
	case !found:
		s.setFlash(w, r, FlashError, "Claim not found.")
	default:
		s.logActivity(r, &user.ID, "delete_claim", fmt.Sprintf("Deleted claim %d", id))
		s.setFlash(w, r, FlashSuccess, "Claim deleted successfully!")
	}
	// The detail page no longer exists after deletion.
	http.Redirect(w, r, "/admin/claims", http.StatusSeeOther)
}
