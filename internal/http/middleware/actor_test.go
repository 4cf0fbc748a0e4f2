package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-parcel-tracking/internal/domain"
	testlog "service-parcel-tracking/internal/testutil"
)

func TestAuthenticate_StoresActor(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var got domain.Actor
	h := Authenticate(testlog.New().Logger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFrom(r.Context())
		require.True(t, ok)
		got = a
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/parcels/me", nil)
	req.Header.Set(HeaderActorID, id.String())
	req.Header.Set(HeaderActorRole, " Sender ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Actor{ID: id, Role: domain.RoleSender}, got)
}

func TestAuthenticate_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		id, role string
	}{
		{"no headers", "", ""},
		{"bad id", "42", "admin"},
		{"nil id", uuid.Nil.String(), "admin"},
		{"unknown role", uuid.NewString(), "courier"},
		{"missing role", uuid.NewString(), ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logs := testlog.New()
			h := Authenticate(logs.Logger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("next must not be called")
			}))
			req := httptest.NewRequest(http.MethodPost, "/parcels", nil)
			req.Header.Set(HeaderActorID, tt.id)
			req.Header.Set(HeaderActorRole, tt.role)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.JSONEq(t, `{"status_code":401,"error":"missing or invalid actor identity"}`, rec.Body.String())
			_, ok := logs.Find("warn", "unauthenticated request")
			require.True(t, ok)
		})
	}
}

func TestActorFrom_Empty(t *testing.T) {
	t.Parallel()

	_, ok := ActorFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.False(t, ok)
}
