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
	"github.com/tenantforms/tenantforms/internal/tenant"
)

// queryFilter builds an equality filter from the given query parameters,
// keyed by parameter name. Absent parameters add nothing.
func queryFilter(r *http.Request, params map[string]string) authz.Filter {
	var f authz.Filter
	q := r.URL.Query()
	for param, field := range params {
		if v := q.Get(param); v != "" {
			f = append(f, authz.Equals(field, v))
		}
	}
	return f
}

// respondProjected writes v restricted to the caller's visible fields.
func respondProjected(w http.ResponseWriter, r *http.Request, status int, entity authz.Entity, v any) {
	view, err := project(GetIdentity(r.Context()), entity, v)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, status, view)
}

// respondProjectedList writes {"docs": [...], "totalDocs": n}.
func respondProjectedList[T any](w http.ResponseWriter, r *http.Request, entity authz.Entity, items []T) {
	views, err := projectAll(GetIdentity(r.Context()), entity, items)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"docs": views, "totalDocs": len(views)})
}

// ListTenants lists the tenants visible to the caller (?slug= narrows)
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	filter := queryFilter(r, map[string]string{"slug": authz.FieldSlug})
	tenants, err := h.tenantService.ListTenants(r.Context(), GetIdentity(r.Context()), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjectedList(w, r, authz.EntityTenants, tenants)
}

// CreateTenant handles tenant creation
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req tenant.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), GetIdentity(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusCreated, authz.EntityTenants, t)
}

// GetTenant returns one tenant
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenantService.GetTenant(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "tenantID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntityTenants, t)
}

// UpdateTenant applies a partial update
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	var req tenant.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	t, err := h.tenantService.UpdateTenant(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "tenantID"), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntityTenants, t)
}

// DeleteTenant removes a tenant that no longer owns users or forms
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.tenantService.DeleteTenant(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "tenantID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
