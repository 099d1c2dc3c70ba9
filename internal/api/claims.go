package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
	"github.com/erazemk/lostfound/internal/store"
)

// ClaimsHandler handles claim endpoints.
type ClaimsHandler struct {
	DB       *sql.DB
	Notifier notify.Notifier
}

type createClaimRequest struct {
	FullNames     string `json:"full_names"`
	StudentNumber string `json:"student_number"`
	StudentEmail  string `json:"student_email"`
	Description   string `json:"description"`
	ItemType      string `json:"item_type"`
	ItemID        int64  `json:"item_id"`
}

type decisionRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

// claimJSON exposes the item reference as item_type/item_id.
type claimJSON struct {
	*model.Claim
	ItemType string `json:"item_type,omitempty"`
	ItemID   int64  `json:"item_id,omitempty"`
}

func toClaimJSON(c *model.Claim) claimJSON {
	return claimJSON{Claim: c, ItemType: string(c.Item.Kind()), ItemID: c.Item.ID()}
}

type claimDetail struct {
	claimJSON
	History []model.ClaimHistory `json:"history"`
}

type decisionResponse struct {
	claimJSON
	ItemClaimed bool `json:"item_claimed"`
}

func (req *createClaimRequest) validate() error {
	req.FullNames = strings.TrimSpace(req.FullNames)
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	req.StudentEmail = strings.TrimSpace(req.StudentEmail)
	req.Description = strings.TrimSpace(req.Description)

	switch {
	case req.FullNames == "" || len(req.FullNames) > 100:
		return errors.New("full_names is required (max 100 characters)")
	case req.StudentNumber == "" || len(req.StudentNumber) > 20:
		return errors.New("student_number is required (max 20 characters)")
	case req.Description == "" || len(req.Description) > model.DescriptionMaxLen:
		return fmt.Errorf("description is required (max %d characters)", model.DescriptionMaxLen)
	}
	if _, err := mail.ParseAddress(req.StudentEmail); err != nil {
		return errors.New("student_email must be a valid email address")
	}
	return nil
}

// Create handles POST /api/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var id string
	if req.ItemID != 0 {
		id = strconv.FormatInt(req.ItemID, 10)
	}
	ref, err := model.ParseItemRef(req.ItemType, id)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item reference")
		return
	}

	claim, err := store.CreateClaim(r.Context(), h.DB, &model.Claim{
		ClaimantName:  req.FullNames,
		StudentNumber: req.StudentNumber,
		StudentEmail:  req.StudentEmail,
		Description:   req.Description,
		Item:          ref,
	})
	if errors.Is(err, store.ErrItemNotFound) {
		jsonError(w, http.StatusUnprocessableEntity, "referenced item does not exist")
		return
	}
	if err != nil {
		slog.Error("failed to create claim", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create claim")
		return
	}

	user := GetUser(r.Context())
	metrics.ClaimsSubmitted.Inc()
	logActivity(r, h.DB, &user.ID, "submit_claim", fmt.Sprintf("Submitted claim #%d for %s via API", claim.ID, ref))
	slog.Info("claim submitted", "user", user.Username, "claim", claim.ID, "item", ref.String())

	jsonResponse(w, http.StatusCreated, toClaimJSON(claim))
}

// List handles GET /api/admin/claims.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ClaimFilter{Query: q.Get("query")}
	if s := q.Get("status"); s != "" {
		status, err := model.ParseClaimStatus(s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = status
	}
	if k := q.Get("item_type"); k != "" {
		kind, err := model.ParseItemKind(k)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid item_type")
			return
		}
		filter.ItemType = kind
	}
	sort := model.ParseClaimSort(q.Get("sort"), q.Get("order"))

	page, err := store.ListClaims(r.Context(), h.DB, filter, sort, pageParam(r))
	if err != nil {
		slog.Error("failed to list claims", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}

	out := model.NewPage(make([]claimJSON, len(page.Items)), page.Page, page.PerPage, page.Total)
	for i := range page.Items {
		out.Items[i] = toClaimJSON(&page.Items[i])
	}
	jsonResponse(w, http.StatusOK, out)
}

// Get handles GET /api/admin/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claim, ok := h.load(w, r)
	if !ok {
		return
	}

	history, err := store.ListClaimHistory(r.Context(), h.DB, claim.ID)
	if err != nil {
		slog.Error("failed to list claim history", "claim", claim.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}
	if history == nil {
		history = []model.ClaimHistory{}
	}

	jsonResponse(w, http.StatusOK, claimDetail{claimJSON: toClaimJSON(claim), History: history})
}

// Decide handles POST /api/admin/claims/{id}/decision.
func (h *ClaimsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := model.ParseClaimStatus(req.Status)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if len(req.AdminNotes) > model.DescriptionMaxLen {
		jsonError(w, http.StatusBadRequest, "admin_notes too long")
		return
	}

	user := GetUser(r.Context())
	decision, err := store.DecideClaim(r.Context(), h.DB, id, status, req.AdminNotes, user.ID)
	if err != nil {
		slog.Error("claim update failed", "claim", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update claim")
		return
	}
	if decision == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}

	metrics.ClaimDecisions.WithLabelValues(string(status)).Inc()
	logActivity(r, h.DB, &user.ID, "update_claim", fmt.Sprintf("Updated claim %d status to %s via API", id, status))
	slog.Info("claim decided", "user", user.Username, "claim", id, "status", status, "item_claimed", decision.ItemClaimed)

	if status.Resolved() {
		h.notify(r.Context(), decision.Claim)
	}

	jsonResponse(w, http.StatusOK, decisionResponse{claimJSON: toClaimJSON(decision.Claim), ItemClaimed: decision.ItemClaimed})
}

func (h *ClaimsHandler) notify(ctx context.Context, claim *model.Claim) {
	if err := h.Notifier.ClaimDecided(ctx, claim); err != nil {
		slog.Warn("failed to notify claimant", "claim", claim.ID, "error", err)
	}
}

func (h *ClaimsHandler) load(w http.ResponseWriter, r *http.Request) (*model.Claim, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return nil, false
	}
	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get claim", "claim", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return nil, false
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return nil, false
	}
	return claim, true
}
