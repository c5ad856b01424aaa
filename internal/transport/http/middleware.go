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
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tenantforms/tenantforms/internal/identity"
	"github.com/tenantforms/tenantforms/internal/observability/logger"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			info := &requestInfo{caller: identity.Anonymous()}
			r = r.WithContext(context.WithValue(r.Context(), requestInfoKey, info))

			defer func() {
				caller := info.caller
				level := slog.LevelInfo
				if ww.Status() >= http.StatusInternalServerError {
					level = slog.LevelError
				}
				slog.LogAttrs(r.Context(), level, "http_request",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(getClientIP(r)),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
					logger.UserID(caller.UserID),
					logger.TenantID(caller.TenantID),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// IdentityMiddleware resolves the caller from an optional bearer token.
// Requests without an Authorization header continue as anonymous; a header
// that is present but unusable is rejected with 401.
func IdentityMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return identityMiddleware(verifier, false)
}

// PublicIdentityMiddleware is IdentityMiddleware for endpoints open to
// anyone: an unusable token is logged and the request continues as
// anonymous.
func PublicIdentityMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return identityMiddleware(verifier, true)
}

func identityMiddleware(verifier TokenVerifier, anonymousOnFailure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity.Anonymous())))
				return
			}

			id, msg, err := resolveBearer(verifier, header)
			if err != nil {
				slog.WarnContext(r.Context(), "rejected bearer token",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.RemoteAddr(getClientIP(r)),
					logger.Error(err),
				)
				if !anonymousOnFailure {
					respondError(w, http.StatusUnauthorized, msg)
					return
				}
				id = identity.Anonymous()
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

func resolveBearer(verifier TokenVerifier, header string) (identity.Identity, string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return identity.Identity{}, "invalid authorization header", errors.New("malformed authorization header")
	}
	id, err := verifier.Verify(token)
	if err != nil {
		return identity.Identity{}, "invalid or expired token", err
	}
	return id, "", nil
}

// RequireAuth rejects anonymous callers.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()).IsAnonymous() {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
