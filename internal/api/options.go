package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brinaregal/brina/internal/api/middleware"
)

// RouterOption customises optional router features.
type RouterOption func(*routerOptions)

type routerOptions struct {
	uploadsDir     string
	uploadsURL     string
	uploadMaxBytes int64
	origins        []string
	limiter        middleware.Limiter
	rateLimit      int
	registerer     prometheus.Registerer
	gatherer       prometheus.Gatherer
}

// WithUploads serves files of the local media driver under baseURL.
func WithUploads(dir, baseURL string) RouterOption {
	return func(o *routerOptions) {
		o.uploadsDir = dir
		o.uploadsURL = baseURL
	}
}

// WithUploadLimit sets the largest accepted file; multipart bodies may exceed it by 1 MiB.
func WithUploadLimit(maxBytes int64) RouterOption {
	return func(o *routerOptions) {
		o.uploadMaxBytes = maxBytes
	}
}

// WithAllowedOrigins restricts CORS to the storefront origins. Empty allows any origin.
func WithAllowedOrigins(origins ...string) RouterOption {
	return func(o *routerOptions) {
		o.origins = origins
	}
}

// WithRateLimit enables the per-IP request limit (requests per minute).
func WithRateLimit(limiter middleware.Limiter, perMinute int) RouterOption {
	return func(o *routerOptions) {
		o.limiter = limiter
		o.rateLimit = perMinute
	}
}

// WithMetricsRegistry isolates collectors, mainly for tests.
func WithMetricsRegistry(registry *prometheus.Registry) RouterOption {
	return func(o *routerOptions) {
		o.registerer = registry
		o.gatherer = registry
	}
}
