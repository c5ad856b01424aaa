// Copyright 2026 The TenantForms Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tenantforms/tenantforms/internal/apperr"
	"github.com/tenantforms/tenantforms/internal/auth"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/observability/logger"
	"github.com/tenantforms/tenantforms/internal/observability/metrics"
	"github.com/tenantforms/tenantforms/internal/submission"
	"github.com/tenantforms/tenantforms/internal/tenant"
	"github.com/tenantforms/tenantforms/internal/user"
)

const (
	maxBodyBytes = 1 << 20

	msgInternal    = "Internal server error"
	msgInvalidBody = "invalid request body"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds HTTP handlers and dependencies
type Handler struct {
	tenantService     *tenant.Service
	userService       *user.Service
	formService       *form.Service
	submissionService *submission.Service
	authService       *auth.Service
	store             Pinger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	tenantService *tenant.Service,
	userService *user.Service,
	formService *form.Service,
	submissionService *submission.Service,
	authService *auth.Service,
	store Pinger,
) *Handler {
	return &Handler{
		tenantService:     tenantService,
		userService:       userService,
		formService:       formService,
		submissionService: submissionService,
		authService:       authService,
		store:             store,
	}
}

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	RateLimiter    *RateLimiter
	Metrics        *metrics.HTTPMetrics
	RequestTimeout time.Duration
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Use(middleware.RequestID)
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", h.HealthCheck)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	limited := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		limited = RateLimitMiddleware(cfg.RateLimiter)
	}

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(PublicIdentityMiddleware(h.authService))

			r.Get("/forms", h.ListPublicForms)
			r.With(limited).Post("/forms", h.SubmitForm)
			r.With(limited).Post("/auth/login", h.Login)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(IdentityMiddleware(h.authService))
			r.Use(RequireAuth)

			r.Get("/auth/me", h.GetCurrentUser)

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", h.ListTenants)
				r.Post("/", h.CreateTenant)
				r.Get("/{tenantID}", h.GetTenant)
				r.Patch("/{tenantID}", h.UpdateTenant)
				r.Delete("/{tenantID}", h.DeleteTenant)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{userID}", h.GetUser)
				r.Patch("/{userID}", h.UpdateUser)
				r.Delete("/{userID}", h.DeleteUser)
			})

			r.Route("/admin/forms", func(r chi.Router) {
				r.Get("/", h.ListForms)
				r.Post("/", h.CreateForm)
				r.Get("/{formID}", h.GetForm)
				r.Patch("/{formID}", h.UpdateForm)
				r.Delete("/{formID}", h.DeleteForm)
			})

			r.Route("/admin/submissions", func(r chi.Router) {
				r.Get("/", h.ListSubmissions)
				r.Get("/{submissionID}", h.GetSubmission)
				r.Patch("/{submissionID}", h.UpdateSubmission)
				r.Delete("/{submissionID}", h.DeleteSubmission)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			slog.ErrorContext(r.Context(), "health check failed", logger.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"service": "tenantforms",
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tenantforms",
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps a classified service error to a status code.
// Infrastructure failures are logged and answered with a generic body.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		respondError(w, http.StatusBadRequest, apperr.MessageOf(err))
	case apperr.KindNotFound:
		respondError(w, http.StatusNotFound, apperr.MessageOf(err))
	case apperr.KindAccessDenied:
		respondError(w, http.StatusForbidden, apperr.MessageOf(err))
	case apperr.KindConflict:
		respondError(w, http.StatusConflict, apperr.MessageOf(err))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			logger.RequestID(middleware.GetReqID(r.Context())),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("decode body: trailing data")
	}
	return nil
}
