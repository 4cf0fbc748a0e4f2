package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-parcel-tracking/internal/http/handlers"
	"service-parcel-tracking/internal/http/middleware"
	"service-parcel-tracking/internal/http/middleware/ratelimit"
	"service-parcel-tracking/internal/logx"
)

// Deps holds everything the router mounts.
type Deps struct {
	Logger    logx.Logger
	Base      *handlers.Handlers
	Parcels   *handlers.ParcelHandler
	Coupons   *handlers.CouponHandler
	RateLimit *ratelimit.Middleware
	Metrics   http.Handler
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logx.Nop()
	}
	if d.RateLimit == nil {
		d.RateLimit = ratelimit.New(d.Logger, nil, nil)
	}
	if d.Metrics == nil {
		d.Metrics = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observability(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(5 * time.Second))

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", d.Metrics)
	r.NotFound(d.Base.NotFound)
	r.MethodNotAllowed(d.Base.MethodNotAllowed)

	r.With(d.RateLimit.Handler()).Get("/tracking/{trackingID}", d.Parcels.Track)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Logger))
		r.Use(d.RateLimit.Handler())

		r.Route("/parcels", func(r chi.Router) {
			r.Post("/", d.Parcels.Create)
			r.Get("/", d.Parcels.ListAll)
			r.Post("/admin", d.Parcels.CreateForSender)
			r.Get("/stats", d.Parcels.Stats)
			r.Get("/me", d.Parcels.ListOwn)
			r.Get("/me/incoming", d.Parcels.Incoming)
			r.Get("/me/history", d.Parcels.History)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", d.Parcels.Delete)
				r.Get("/details", d.Parcels.Details)
				r.Get("/status-log", d.Parcels.StatusLog)
				r.Post("/cancel", d.Parcels.Cancel)
				r.Patch("/confirm", d.Parcels.Confirm)
				r.Patch("/delivery-status", d.Parcels.UpdateStatus)
				r.Patch("/block-status", d.Parcels.SetBlocked)
			})
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", d.Coupons.Create)
			r.Get("/", d.Coupons.List)
			r.Get("/{code}/validate", d.Coupons.Validate)
		})
	})

	return r
}
