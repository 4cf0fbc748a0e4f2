package middleware

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/logx"
)

// Identity headers set by the upstream auth gateway.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(domain.Actor)
	return a, ok
}

// Authenticate rejects requests without a well-formed identity with 401.
func Authenticate(logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := parseActor(r)
			if !ok {
				logger.Warn("unauthenticated request",
					logx.String("method", r.Method),
					logx.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"status_code":401,"error":"missing or invalid actor identity"}`)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
		})
	}
}

func parseActor(r *http.Request) (domain.Actor, bool) {
	id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(HeaderActorID)))
	if err != nil || id == uuid.Nil {
		return domain.Actor{}, false
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole))))
	if !role.Valid() {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: role}, true
}
