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
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/submission"
)

// UpdateSubmissionRequest is a partial submission update. form and tenant
// are accepted only so that the service can reject them explicitly.
type UpdateSubmissionRequest struct {
	SubmissionData json.RawMessage `json:"submissionData"`
	Form           *string         `json:"form"`
	Tenant         *string         `json:"tenant"`
}

// ListSubmissions lists the submissions visible to the caller (?form=, ?tenant=)
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	filter := queryFilter(r, map[string]string{
		"form":   authz.FieldForm,
		"tenant": authz.FieldTenant,
	})
	subs, err := h.submissionService.ListSubmissions(r.Context(), GetIdentity(r.Context()), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjectedList(w, r, authz.EntitySubmissions, subs)
}

// GetSubmission returns one submission
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	s, err := h.submissionService.GetSubmission(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "submissionID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntitySubmissions, s)
}

// UpdateSubmission replaces the submitted data
func (h *Handler) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	var req UpdateSubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	in := submission.UpdateInput{FormID: req.Form, TenantID: req.Tenant}
	if len(req.SubmissionData) > 0 {
		data, err := submission.ParseData(req.SubmissionData)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		in.Data = data
	}

	s, err := h.submissionService.UpdateSubmission(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "submissionID"), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondProjected(w, r, http.StatusOK, authz.EntitySubmissions, s)
}

// DeleteSubmission removes a submission
func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := h.submissionService.DeleteSubmission(r.Context(), GetIdentity(r.Context()), chi.URLParam(r, "submissionID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
