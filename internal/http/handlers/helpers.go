package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/http/middleware"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/service/parcel"
)

const bodyLimit = 1 << 20

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode error",
			logx.String("request_id", chimw.GetReqID(r.Context())),
			logx.Err(err),
		)
	}
}

type errResponse struct {
	StatusCode int      `json:"status_code"`
	Error      string   `json:"error"`
	Allowed    []string `json:"allowed_transitions,omitempty"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(logger, w, r, status, errResponse{StatusCode: status, Error: msg})
}

// writeServiceError maps engine errors onto HTTP statuses. Unclassified errors are 500 and their text is not exposed.
func writeServiceError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	resp := errResponse{Error: err.Error()}
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		resp.StatusCode = http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		resp.StatusCode = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		resp.StatusCode = http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidTransition):
		resp.StatusCode = http.StatusUnprocessableEntity
		var te *apperr.TransitionError
		if errors.As(err, &te) {
			resp.Allowed = append([]string{}, te.Allowed...)
		}
	case errors.Is(err, apperr.ErrConflict):
		resp.StatusCode = http.StatusConflict
	default:
		logger.Error("request failed",
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.String("request_id", chimw.GetReqID(r.Context())),
			logx.Err(err),
		)
		resp.StatusCode = http.StatusInternalServerError
		resp.Error = "internal error"
	}
	writeJSON(logger, w, r, resp.StatusCode, resp)
}

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

// decodeOptionalJSON accepts an empty body as the zero value.
func decodeOptionalJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	return decodeJSON(logger, w, r, dst)
}

func idFromURL(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.New("invalid id")
	}
	return id, nil
}

func pageFromQuery(r *http.Request) (parcel.Page, error) {
	var p parcel.Page
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return p, errors.New("invalid limit")
		}
		p.Limit = v
	}
	if s := q.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return p, errors.New("invalid offset")
		}
		p.Offset = v
	}
	return p, nil
}

// actor is set by the authentication middleware on every protected route.
func actor(r *http.Request) domain.Actor {
	a, _ := middleware.ActorFrom(r.Context())
	return a
}
