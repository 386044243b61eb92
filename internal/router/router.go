// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// article generator. Operational endpoints are open; everything under
// /admin is CSRF-protected and the generator API also requires a completed
// sign-in and the matching capability.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"articlegen/internal/handlers"
	"articlegen/internal/metrics"
	"articlegen/internal/middleware"
	"articlegen/internal/models"
)

// APIPrefix is the mount point of the generator endpoints.
const APIPrefix = "/admin/api/aicg/v1"

// Options carries what the router needs beyond the handler groups.
type Options struct {
	Sessions      middleware.SessionGetter
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, auth *handlers.Auth, gen *handlers.Generator) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Operational endpoints: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))
		r.Use(middleware.LoadSession(opts.Sessions))

		// Accessible without a session.
		r.Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)

		// Requires a session but not a completed second factor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", auth.Me)
			r.Get("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})

		// Generator API: authenticated, 2FA-verified, capability-gated.
		r.Route("/api/aicg/v1", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(models.CapEdit))
				r.Post("/generate", gen.Generate)
				r.Post("/save", gen.Save)
				r.Post("/regenerate-image", gen.RegenerateImage)
			})

			r.With(middleware.RequireCapability(models.CapManage)).
				Post("/save-api-key", gen.SaveAPIKey)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"code":"not_found","message":"Not found."}`)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, `{"code":"method_not_allowed","message":"Method not allowed."}`)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, `{"status":"ok"}`)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
