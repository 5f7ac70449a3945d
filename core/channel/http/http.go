// Package http serves field path resolution over JSON:API style routes.
// Every request resolves against the catalog that is current when it arrives.
package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/fieldresolver/adapters/metrics"
	"github.com/artpar/fieldresolver/core/fieldpath"
	"github.com/artpar/fieldresolver/core/query"
	"github.com/artpar/fieldresolver/core/schema"
	"github.com/artpar/fieldresolver/pkg/jsonapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// CatalogSource returns the active catalog, or nil before the first load.
type CatalogSource interface {
	Catalog() *schema.Catalog
}

// Options configures a Channel.
type Options struct {
	Logger         zerolog.Logger
	Metrics        *metrics.Collector // nil disables metrics
	MetricsPath    string
	RequestTimeout time.Duration
}

// Channel implements the HTTP channel.
type Channel struct {
	router  chi.Router
	catalog CatalogSource
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// New creates a new HTTP channel.
func New(catalog CatalogSource, opts Options) *Channel {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	c := &Channel{
		router:  chi.NewRouter(),
		catalog: catalog,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}

	r := c.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(c.logger, opts.MetricsPath))
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	if c.metrics != nil {
		r.Use(NewMetricsMiddleware(c.metrics, opts.MetricsPath))
		r.Handle(opts.MetricsPath, c.metrics.Handler())
	}

	r.Get("/health", c.handleHealth)

	// Schema introspection routes
	r.Mount("/_schema", NewSchemaHandler(catalog).Routes())

	r.Route("/jsonapi/{entity_type}/{bundle}", func(r chi.Router) {
		r.Get("/", c.handleQuery)
		r.Get("/_resolve", c.handleResolve)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonapi.WriteMethodNotAllowed(w, r.Method, []string{http.MethodGet, http.MethodHead})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonapi.WriteNotFound(w, "route")
	})

	return c
}

// Handler returns the HTTP handler.
func (c *Channel) Handler() http.Handler {
	return c.router
}

func (c *Channel) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	cat := c.catalog.Catalog()
	if cat == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"status": "unhealthy",
			"error":  "catalog not loaded",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"entity_types":   len(cat.EntityTypes()),
		"resource_types": len(cat.ResourceTypes()),
	})
}

// resourceType loads the catalog and checks the route's resource type. It
// writes the error response and returns false when the request cannot proceed.
func (c *Channel) resourceType(w http.ResponseWriter, r *http.Request) (*schema.Catalog, string, string, bool) {
	cat := c.catalog.Catalog()
	if cat == nil {
		jsonapi.WriteError(w, jsonapi.ErrServiceUnavailable("catalog not loaded"))
		return nil, "", "", false
	}

	entityType := chi.URLParam(r, "entity_type")
	bundle := chi.URLParam(r, "bundle")
	if !cat.HasBundle(entityType, bundle) {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusNotFound, fieldpath.KindUnknownResourceType.String(), "Unknown Resource Type").
			Detailf("resource type %s does not exist", schema.ResourceTypeName(entityType, bundle)).
			Build())
		return nil, "", "", false
	}
	return cat, entityType, bundle, true
}

// handleQuery translates filter, sort, include and fieldset parameters.
func (c *Channel) handleQuery(w http.ResponseWriter, r *http.Request) {
	cat, entityType, bundle, ok := c.resourceType(w, r)
	if !ok {
		return
	}

	params, err := query.Parse(r.URL.Query())
	if err != nil {
		jsonapi.WriteError(w, queryErrors(err)...)
		return
	}

	start := time.Now()
	plan, err := query.NewTranslator(c.resolver(cat)).Translate(entityType, bundle, params)
	c.observeDuration("translate", start)
	if err != nil {
		jsonapi.WriteError(w, queryErrors(err)...)
		return
	}

	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{
		"resource_type": schema.ResourceTypeName(entityType, bundle),
		"filters":       plan.Filters,
		"sorts":         plan.Sorts,
		"includes":      plan.Includes,
		"fieldsets":     plan.Fieldsets,
	})
}

// handleResolve resolves the single path given in ?path=.
func (c *Channel) handleResolve(w http.ResponseWriter, r *http.Request) {
	cat, entityType, bundle, ok := c.resourceType(w, r)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		jsonapi.WriteError(w, jsonapi.ErrInvalidParameter("path", "the path parameter is required"))
		return
	}

	resolved, err := c.resolver(cat).Resolve(entityType, bundle, path)
	if err != nil {
		jsonapi.WriteError(w, resolutionError("path", err))
		return
	}

	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{
		"resource_type":    schema.ResourceTypeName(entityType, bundle),
		"path":             path,
		"internal":         resolved.String(),
		"key":              resolved.Key(),
		"ends_on_relation": resolved.EndsOnReference(),
		"resolved":         resolved,
	})
}

func (c *Channel) resolver(cat *schema.Catalog) query.PathResolver {
	r := fieldpath.NewResolver(cat, fieldpath.WithLogger(c.logger))
	if c.metrics == nil {
		return r
	}
	return observedResolver{resolver: r, metrics: c.metrics}
}

func (c *Channel) observeDuration(operation string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ResolveDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// observedResolver records every resolution it performs.
type observedResolver struct {
	resolver *fieldpath.Resolver
	metrics  *metrics.Collector
}

func (o observedResolver) Resolve(entityType, bundle, path string) (fieldpath.ResolvedPath, error) {
	start := time.Now()
	resolved, err := o.resolver.Resolve(entityType, bundle, path)
	o.metrics.ObserveResolution("resolve", entityType, err, time.Since(start))
	return resolved, err
}

func (o observedResolver) ResolveInclude(entityType, bundle, path string) (fieldpath.ResolvedPath, error) {
	start := time.Now()
	resolved, err := o.resolver.ResolveInclude(entityType, bundle, path)
	o.metrics.ObserveResolution("include", entityType, err, time.Since(start))
	return resolved, err
}
