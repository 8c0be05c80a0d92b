package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-counter-go/connectors/wehttp"
	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/support"
	"github.com/weegigs/wee-counter-go/we"
)

type CounterService = we.EntityService[counter.Counter]

// CounterHandler serves the counter resources, without /metrics.
type CounterHandler http.Handler

func NewSessionStore() *we.MemoryEventStore {
	return we.NewMemoryEventStore()
}

func NewCounterService(store we.EventStore, cfg support.Config) CounterService {
	return counter.NewService(store, we.WithAttempts(cfg.ExecuteAttempts))
}

func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

func NewMetrics(registry *prometheus.Registry) *wehttp.Metrics {
	return wehttp.NewMetrics(registry, "counter")
}

// NewRateLimiter returns nil when throttling is disabled.
func NewRateLimiter(cfg support.Config) *wehttp.RateLimiter {
	if cfg.RateLimit <= 0 {
		return nil
	}

	return wehttp.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
}

func NewCounterHandler(
	service CounterService,
	sessions we.SessionStore,
	metrics *wehttp.Metrics,
	limiter *wehttp.RateLimiter,
	cfg support.Config,
	logger *zerolog.Logger,
) CounterHandler {
	return wehttp.NewHandler[counter.Counter](
		service,
		wehttp.Logger[counter.Counter](logger),
		wehttp.Sessions[counter.Counter](sessions),
		wehttp.Instrumented[counter.Counter](metrics),
		wehttp.Throttled[counter.Counter](limiter),
		wehttp.WriteTimeout[counter.Counter](cfg.WriteTimeout),
	)
}

func NewServer(cfg support.Config, handler CounterHandler, registry *prometheus.Registry) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withLogging)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	r.Mount("/", handler)

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

var store = wire.NewSet(
	NewSessionStore,
	wire.Bind(new(we.EventStore), new(*we.MemoryEventStore)),
	wire.Bind(new(we.SessionStore), new(*we.MemoryEventStore)),
)

var instrumentation = wire.NewSet(
	NewRegistry,
	NewMetrics,
)

var Live = wire.NewSet(
	store,
	instrumentation,
	NewCounterService,
	NewRateLimiter,
	NewCounterHandler,
	NewServer,
)
