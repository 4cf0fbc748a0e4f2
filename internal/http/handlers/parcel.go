package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/service/parcel"
)

// ParcelHandler serves the parcel workflow and public tracking endpoints.
type ParcelHandler struct {
	uc     parcelUsecase
	logger logx.Logger
}

// NewParcelHandler wires a parcelUsecase into HTTP handlers.
func NewParcelHandler(uc parcelUsecase, logger logx.Logger) *ParcelHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &ParcelHandler{uc: uc, logger: logger}
}

// Create handles POST /parcels.
func (h *ParcelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createParcelRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	a := actor(r)
	p, err := h.uc.Create(r.Context(), a, req.toInput())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/parcels/"+p.ID.String()+"/status-log")
	writeJSON(h.logger, w, r, http.StatusCreated, p.ViewFor(a.Role))
}

// CreateForSender handles POST /parcels/admin.
func (h *ParcelHandler) CreateForSender(w http.ResponseWriter, r *http.Request) {
	var req adminCreateParcelRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	a := actor(r)
	p, err := h.uc.CreateForSender(r.Context(), a, req.SenderEmail, req.toInput())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, p.ViewFor(a.Role))
}

// Cancel handles POST /parcels/{id}/cancel.
func (h *ParcelHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parcelID(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if !decodeOptionalJSON(h.logger, w, r, &req) {
		return
	}
	a := actor(r)
	p, err := h.uc.Cancel(r.Context(), a, id, req.Note)
	h.respondParcel(w, r, a, p, err)
}

// Delete handles DELETE /parcels/{id}.
func (h *ParcelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parcelID(w, r)
	if !ok {
		return
	}
	if err := h.uc.Delete(r.Context(), actor(r), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirm handles PATCH /parcels/{id}/confirm.
func (h *ParcelHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parcelID(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if !decodeOptionalJSON(h.logger, w, r, &req) {
		return
	}
	a := actor(r)
	p, err := h.uc.ConfirmDelivery(r.Context(), a, id, req.Note)
	h.respondParcel(w, r, a, p, err)
}

// UpdateStatus handles PATCH /parcels/{id}/delivery-status.
func (h *ParcelHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parcelID(w, r)
	if !ok {
		return
	}
	var req statusUpdateRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	a := actor(r)
	p, err := h.uc.UpdateStatus(r.Context(), a, id, req.toInput())
	h.respondParcel(w, r, a, p, err)
}

// SetBlocked handles PATCH /parcels/{id}/block-status.
func (h *ParcelHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parcelID(w, r)
	if !ok {
		return
	}
	var req blockRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	if req.Blocked == nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "is_blocked is required")
		return
	}
	a := actor(r)
	p, err := h.uc.SetBlocked(r.Context(), a, id, parcel.BlockInput{Blocked: *req.Blocked, Reason: req.Reason})
	h.respondParcel(w, r, a, p, err)
}

// Details handles GET /parcels/{id}/details.
func (h *ParcelHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parcelID(w, r)
	if !ok {
		return
	}
	a := actor(r)
	p, err := h.uc.Details(r.Context(), a, id)
	h.respondParcel(w, r, a, p, err)
}

// StatusLog handles GET /parcels/{id}/status-log.
func (h *ParcelHandler) StatusLog(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parcelID(w, r)
	if !ok {
		return
	}
	entries, err := h.uc.StatusLog(r.Context(), actor(r), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{"status_log": entries})
}

// ListOwn handles GET /parcels/me.
func (h *ParcelHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.uc.ListOwn)
}

// Incoming handles GET /parcels/me/incoming.
func (h *ParcelHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.uc.Incoming)
}

// History handles GET /parcels/me/history.
func (h *ParcelHandler) History(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.uc.History)
}

// ListAll handles GET /parcels with an optional ?status= filter.
func (h *ParcelHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	var status *domain.ParcelStatus
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		st := domain.ParcelStatus(strings.ToLower(s))
		status = &st
	}
	a := actor(r)
	list, err := h.uc.ListAll(r.Context(), a, status, page)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, parcelsToResponse(list, a.Role))
}

// Stats handles GET /parcels/stats.
func (h *ParcelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.uc.Stats(r.Context(), actor(r))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, stats)
}

// Track handles GET /tracking/{trackingID}. No authentication.
func (h *ParcelHandler) Track(w http.ResponseWriter, r *http.Request) {
	view, err := h.uc.Track(r.Context(), chi.URLParam(r, "trackingID"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, view)
}

type listFunc func(ctx context.Context, a domain.Actor, page parcel.Page) ([]domain.Parcel, error)

func (h *ParcelHandler) list(w http.ResponseWriter, r *http.Request, fetch listFunc) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}
	a := actor(r)
	list, err := fetch(r.Context(), a, page)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, parcelsToResponse(list, a.Role))
}

func (h *ParcelHandler) parcelID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid parcel id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ParcelHandler) respondParcel(w http.ResponseWriter, r *http.Request, a domain.Actor, p *domain.Parcel, err error) {
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, p.ViewFor(a.Role))
}
