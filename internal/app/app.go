package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniCatalog/internal/cart"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// WritesPerMinute limits POST/PUT/DELETE per client IP; 0 disables.
	WritesPerMinute int
}

type Deps struct {
	Products catalog.Store
	Carts    cart.Store
}

const (
	readyTimeout = 2 * time.Second
	limitWindow  = time.Minute
)

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	if httpDeps.Log == nil {
		httpDeps.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	var limiter *kit.IPRateLimiter
	if httpDeps.WritesPerMinute > 0 {
		limiter = kit.NewIPRateLimiter(httpDeps.WritesPerMinute, limitWindow)
	}

	products := &catalog.Server{
		Store:        deps.Products,
		Log:          httpDeps.Log.With(zap.String("component", "products")),
		WriteLimiter: limiter,
	}
	carts := &cart.Server{
		Store:        deps.Carts,
		Log:          httpDeps.Log.With(zap.String("component", "carts")),
		WriteLimiter: limiter,
	}

	r.Route("/api", func(api chi.Router) {
		api.Mount("/products", products.Routes())
		api.Mount("/carts", carts.Routes())
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry, deps.Service)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Products.Ping(ctx); err != nil {
			log.Warn("readyz failed: products", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "products not ready", nil)
			return
		}

		if err := deps.Carts.Ping(ctx); err != nil {
			log.Warn("readyz failed: carts", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "carts not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
