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
	"github.com/tenantforms/tenantforms/internal/form"
)

// ListForms lists the forms visible to the caller. ?tenant= and ?title=
// narrow the result; they are conjoined with the caller's scope, never
// substituted for it.
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	filter := queryFilter(r, map[string]string{
		"tenant": authz.FieldTenant,
		"title":  "title",
	})
	forms, err := h.formService.ListForms(r.Context(), GetIdentity(r.Context()), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjectedList(w, r, authz.EntityForms, forms)
}

// CreateForm creates a form in the caller's tenant
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req form.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	f, err := h.formService.CreateForm(r.Context(), GetIdentity(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusCreated, authz.EntityForms, f)
}

// GetForm returns one form
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.formService.GetForm(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "formID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntityForms, f)
}

// UpdateForm applies a partial update
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	var req form.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	f, err := h.formService.UpdateForm(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "formID"), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntityForms, f)
}

// DeleteForm removes a form and its submissions
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := h.formService.DeleteForm(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "formID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
