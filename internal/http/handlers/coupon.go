package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"service-parcel-tracking/internal/logx"
)

// CouponHandler serves coupon administration endpoints.
type CouponHandler struct {
	uc     couponUsecase
	logger logx.Logger
}

// NewCouponHandler wires a couponUsecase into HTTP handlers.
func NewCouponHandler(uc couponUsecase, logger logx.Logger) *CouponHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &CouponHandler{uc: uc, logger: logger}
}

// Create handles POST /coupons.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	c, err := h.uc.Create(r.Context(), actor(r), req.toInput())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, couponToResponse(*c))
}

// List handles GET /coupons.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	var limitPtr, offsetPtr *int
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limitPtr = &v
	}
	if s := q.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid offset")
			return
		}
		offsetPtr = &v
	}

	list, err := h.uc.List(r.Context(), actor(r), limitPtr, offsetPtr)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, couponsToResponse(list))
}

// Validate handles GET /coupons/{code}/validate.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	res, err := h.uc.Validate(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, res)
}
