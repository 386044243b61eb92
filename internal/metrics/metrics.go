// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

var (
	// ArticlesGenerated counts article drafts by outcome.
	ArticlesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articlegen_articles_generated_total",
		Help: "Article drafts requested from the provider, by result.",
	}, []string{"result"})

	// ArticlesSaved counts persisted articles.
	ArticlesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "articlegen_articles_saved_total",
		Help: "Articles persisted to the content store.",
	})

	// ImagesGenerated counts image generation calls by outcome.
	ImagesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articlegen_images_generated_total",
		Help: "Image generation calls, by result.",
	}, []string{"result"})

	// ImagesLocalized counts remote images downloaded and registered, by outcome.
	ImagesLocalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "articlegen_images_localized_total",
		Help: "Remote images downloaded and registered as managed assets, by result.",
	}, []string{"result"})

	// RequestDuration observes HTTP handler latency by route pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "articlegen_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"method", "route", "status"})
)

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultFailed
	}
	return ResultOK
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
