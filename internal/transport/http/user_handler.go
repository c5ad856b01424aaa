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
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/user"
)

// ListUsers lists the accounts visible to the caller (?tenant=, ?email=, ?role=)
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := queryFilter(r, map[string]string{
		"tenant": authz.FieldTenant,
		"email":  authz.FieldEmail,
		"role":   "role",
	})
	users, err := h.userService.ListUsers(r.Context(), GetIdentity(r.Context()), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjectedList(w, r, authz.EntityUsers, users)
}

// CreateUser provisions an account
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	u, err := h.userService.CreateUser(r.Context(), GetIdentity(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusCreated, authz.EntityUsers, u)
}

// GetUser returns one account
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.GetUser(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntityUsers, u)
}

// UpdateUser applies a partial update
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	u, err := h.userService.UpdateUser(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "userID"), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntityUsers, u)
}

// DeleteUser removes an account
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteUser(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "userID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
