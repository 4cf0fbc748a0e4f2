package pprofserver

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"service-parcel-tracking/internal/logx"
)

const realm = "pprof"

// Config stores debug server credentials.
type Config struct {
	User string
	Pass string
}

// Handler serves the runtime profiles under /debug/pprof/.
// Loopback callers skip auth. Remote callers need basic auth, and are
// always rejected when no credentials are configured.
func Handler(cfg Config, logger logx.Logger) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	r := chi.NewRouter()
	r.Use(localOrBasicAuth(cfg, logger))
	r.Mount("/debug", middleware.Profiler())
	return r
}

func localOrBasicAuth(cfg Config, logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		withAuth := middleware.BasicAuth(realm, map[string]string{cfg.User: cfg.Pass})(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isLoopback(r.RemoteAddr) {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.User == "" || cfg.Pass == "" {
				logger.Warn("pprof access denied", logx.String("remote_addr", r.RemoteAddr))
				w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			withAuth.ServeHTTP(w, r)
		})
	}
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	return ip != nil && ip.IsLoopback()
}
