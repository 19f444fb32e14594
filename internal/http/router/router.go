// Package router sets up the HTTP routes for the Roster API server.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roguepikachu/roster/internal/http/handler"
	"github.com/roguepikachu/roster/internal/http/middleware"
	"github.com/roguepikachu/roster/internal/service"
	"github.com/roguepikachu/roster/pkg"
)

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

type options struct {
	clock    service.Clock
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
}

// Option customises NewRouter.
type Option func(*options)

// WithClock sets the clock used to stamp recovered panics.
func WithClock(c service.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithMetrics records request metrics and exposes g on the metrics path.
func WithMetrics(m *middleware.Metrics, g prometheus.Gatherer) Option {
	return func(o *options) {
		o.metrics = m
		o.gatherer = g
	}
}

// routes is the complete table of endpoints served by the API.
func routes(h *handler.Handler, hh *handler.HealthHandler) []route {
	return []route{
		{http.MethodGet, pkg.StudentsPath, h.List},
		{http.MethodPost, pkg.StudentsPath, h.Create},
		{http.MethodGet, pkg.StudentsPath + "/:id", h.Get},
		{http.MethodPut, pkg.StudentsPath + "/:id", h.Update},
		{http.MethodDelete, pkg.StudentsPath + "/:id", h.Delete},
		{http.MethodGet, pkg.HealthCheckPath, handler.Health},
		{http.MethodGet, pkg.LivenessPath, hh.Liveness},
		{http.MethodGet, pkg.ReadinessPath, hh.Readiness},
	}
}

// NewRouter initializes and returns the main Gin engine with all routes.
func NewRouter(h *handler.Handler, hh *handler.HealthHandler, errs *handler.ErrorTranslator, opts ...Option) *gin.Engine {
	o := options{clock: service.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery(o.clock.Now))
	if o.metrics != nil {
		r.Use(o.metrics.Handler())
		r.GET(pkg.MetricsPath, gin.WrapH(promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})))
	}

	for _, rt := range routes(h, hh) {
		r.Handle(rt.method, rt.path, rt.handler)
	}
	r.NoRoute(errs.RouteNotFound)
	r.NoMethod(errs.MethodNotAllowed)
	return r
}
