// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/greenhouse/internal/audit"
	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/authz"
	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/events"
	"github.com/tomtom215/greenhouse/internal/middleware"
	"github.com/tomtom215/greenhouse/internal/websocket"
)

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Config   *config.Config
	DB       *database.DB
	Tokens   *auth.TokenManager
	OTP      *auth.OTPService
	Lockout  *auth.LockoutManager
	Enforcer *authz.Enforcer
	Events   events.Publisher
	Hub      *websocket.Hub
	Audit    audit.Recorder
}

// Router builds the HTTP handler tree.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
	trustProxies  bool
}

// NewRouter creates a router from deps.
func NewRouter(deps Deps) *Router {
	return &Router{
		handler:       NewHandler(deps),
		authn:         auth.NewMiddleware(deps.Tokens, deps.DB),
		authz:         authz.NewMiddleware(deps.Enforcer),
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(&deps.Config.Security)),
		trustProxies:  len(deps.Config.Security.TrustedProxies) > 0,
	}
}

// SetupChi returns the complete chi router.
//
// Global middleware order:
//  1. RequestID - tags the request and its log context
//  2. RealIP - only when trusted proxies are configured
//  3. Recoverer - turns panics into 500s
//  4. RequestLogger and PrometheusMetrics
//  5. Compression
//  6. CORS - answers preflights before authentication
func (router *Router) SetupChi() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if router.trustProxies {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)

		router.registerPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.authn.Authenticate)
			r.Use(router.authz.Authorize)

			router.registerSessionRoutes(r)
			router.registerGreenhouseRoutes(r)
			router.registerPlantRoutes(r)
			router.registerSensorRoutes(r)
			router.registerUserRoutes(r)
			r.Get("/audit-events", router.handler.ListAuditEvents)
		})
	})

	return r
}

func (router *Router) registerPublicRoutes(r chi.Router) {
	h := router.handler

	r.With(router.chiMiddleware.RateLimitHealth()).Get("/health", h.Health)

	authLimit := router.chiMiddleware.RateLimitAuth()
	r.Group(func(r chi.Router) {
		r.Use(authLimit)
		r.Post("/register", h.Register)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/resend-otp", h.ResendOTP)
	})
	r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
}

func (router *Router) registerSessionRoutes(r chi.Router) {
	h := router.handler
	r.Get("/user", h.CurrentUser)
	r.Post("/logout", h.Logout)
	r.Get("/ws", h.WebSocket)
}

func (router *Router) registerGreenhouseRoutes(r chi.Router) {
	h := router.handler
	r.Route("/greenhouses", func(r chi.Router) {
		r.Get("/", h.ListGreenhouses)
		r.Post("/", h.CreateGreenhouse)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetGreenhouse)
			r.Put("/", h.UpdateGreenhouse)
			r.Patch("/", h.UpdateGreenhouse)
			r.Delete("/", h.DeleteGreenhouse)
			r.Get("/metrics", h.GreenhouseMetrics)
			r.Get("/control", h.GreenhouseControls)
			r.Post("/control", h.ControlGreenhouse)
		})
	})
}

func (router *Router) registerPlantRoutes(r chi.Router) {
	h := router.handler
	r.Route("/plants", func(r chi.Router) {
		r.Get("/", h.ListPlants)
		r.Post("/", h.CreatePlant)
		r.Get("/{id}", h.GetPlant)
		r.Put("/{id}", h.UpdatePlant)
		r.Patch("/{id}", h.UpdatePlant)
		r.Delete("/{id}", h.DeletePlant)
	})
}

func (router *Router) registerSensorRoutes(r chi.Router) {
	h := router.handler
	r.Route("/sensors", func(r chi.Router) {
		r.Get("/", h.ListSensors)
		r.Post("/", h.CreateSensor)
		r.Get("/{id}", h.GetSensor)
		r.Put("/{id}", h.UpdateSensor)
		r.Patch("/{id}", h.UpdateSensor)
		r.Delete("/{id}", h.DeleteSensor)
		r.Post("/{id}/readings", h.RecordSensorReading)
	})
}

func (router *Router) registerUserRoutes(r chi.Router) {
	h := router.handler
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Patch("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
		r.Post("/{id}/toggle-status", h.ToggleUserStatus)
		r.Put("/{id}/permissions", h.UpdateUserPermissions)
	})
}
