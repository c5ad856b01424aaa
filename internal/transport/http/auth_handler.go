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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/observability/logger"
	"github.com/tenantforms/tenantforms/internal/user"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"exp"`
	User      map[string]any `json:"user"`
}

// Login handles email/password authentication and issues a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondServiceError(w, r, err)
		return
	}

	caller := u.Identity()
	token, exp, err := h.authService.Issue(caller)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token", logger.UserID(u.ID), logger.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	view, err := project(caller, authz.EntityUsers, u)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp, User: view})
}

// GetCurrentUser returns the authenticated caller's account
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller := GetIdentity(r.Context())
	u, err := h.userService.GetUser(r.Context(), caller, caller.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	view, err := project(caller, authz.EntityUsers, u)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": view})
}
