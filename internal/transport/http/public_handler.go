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
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/identity"
	"github.com/tenantforms/tenantforms/internal/submission"
)

// SubmitFormRequest is the public submission payload. submissionData may be
// an object or a list of {field, value} pairs. Any tenant sent along is
// ignored.
type SubmitFormRequest struct {
	FormID         string          `json:"formId"`
	SubmissionData json.RawMessage `json:"submissionData"`
}

// SubmitFormResponse acknowledges a stored submission.
type SubmitFormResponse struct {
	Success      bool    `json:"success"`
	SubmissionID string  `json:"submissionId"`
	Message      string  `json:"message"`
	RedirectURL  *string `json:"redirectUrl"`
}

// ListPublicForms serves the form catalogue of a tenant (?tenant=<slug>) or
// a single form (?id=<id>).
func (h *Handler) ListPublicForms(w http.ResponseWriter, r *http.Request) {
	tenantSlug := r.URL.Query().Get("tenant")
	formID := r.URL.Query().Get("id")

	if tenantSlug == "" && formID == "" {
		respondError(w, http.StatusBadRequest, "Either tenant slug or form ID is required")
		return
	}

	var forms []*form.Form
	if formID != "" {
		f, err := h.formService.PublicByID(r.Context(), formID)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		forms = []*form.Form{f}
	} else {
		t, err := h.tenantService.GetBySlug(r.Context(), tenantSlug)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		forms, err = h.formService.PublicByTenant(r.Context(), t.ID)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
	}

	fields := authz.VisibleFields(identity.Anonymous(), authz.EntityForms)
	out := make([]map[string]any, 0, len(forms))
	for _, f := range forms {
		m, err := projectFields(fields, publicFormHidden, f)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		out = append(out, m)
	}

	respondJSON(w, http.StatusOK, map[string]any{"forms": out})
}

// SubmitForm stores a public submission. The tenant is taken from the form.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var req SubmitFormRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	raw := bytes.TrimSpace(req.SubmissionData)
	if req.FormID == "" || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		respondError(w, http.StatusBadRequest, "Form ID and submission data are required")
		return
	}

	data, err := submission.ParseData(raw)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	receipt, err := h.submissionService.Submit(r.Context(), GetIdentity(r.Context()), submission.SubmitInput{
		FormID:             req.FormID,
		Data:               data,
		SubmitterIP:        getClientIP(r),
		SubmitterUserAgent: getUserAgent(r),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := SubmitFormResponse{
		Success:      true,
		SubmissionID: receipt.Submission.ID,
		Message:      receipt.Message,
	}
	if receipt.RedirectURL != "" {
		resp.RedirectURL = &receipt.RedirectURL
	}
	respondJSON(w, http.StatusOK, resp)
}
