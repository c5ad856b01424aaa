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
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantforms/tenantforms/internal/audit"
	"github.com/tenantforms/tenantforms/internal/auth"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/identity"
	"github.com/tenantforms/tenantforms/internal/observability/metrics"
	"github.com/tenantforms/tenantforms/internal/seed"
	"github.com/tenantforms/tenantforms/internal/store/memory"
	"github.com/tenantforms/tenantforms/internal/submission"
	"github.com/tenantforms/tenantforms/internal/tenant"
	"github.com/tenantforms/tenantforms/internal/user"
)

const testSecret = "test-secret-test-secret-test-secret"

type testServer struct {
	router   http.Handler
	store    *memory.Store
	demo     *seed.Result
	other    *tenant.Tenant
	otherFrm *form.Form
}

func newTestServer(t *testing.T, rl *RateLimiter) *testServer {
	t.Helper()

	st := memory.New()
	a := audit.NewSlogLoggerWith(slog.New(slog.NewTextHandler(io.Discard, nil)))
	tenants := tenant.NewService(st.Tenants(), a)
	users := user.NewService(st.Users(), user.NewPasswordHasher(1024, 1, 1, 16, 32), a)
	forms := form.NewService(st.Forms(), st.Tenants(), a)
	subs := submission.NewService(st.Submissions(), st.Forms(), a, time.Second)
	authSvc, err := auth.NewService("tenantforms", testSecret, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	demo, err := seed.New(tenants, users, forms, slog.New(slog.NewTextHandler(io.Discard, nil))).Run(ctx)
	require.NoError(t, err)

	super := identity.Identity{UserID: demo.SuperAdminID, Role: identity.RoleSuperAdmin}
	other, err := tenants.CreateTenant(ctx, super, tenant.CreateInput{Name: "Globex"})
	require.NoError(t, err)
	otherForm, err := forms.CreateForm(ctx, super, form.CreateInput{
		Title:            "Feedback",
		TenantID:         other.ID,
		Fields:           []form.Field{{Name: "comment", Label: "Comment", Type: form.FieldTextarea}},
		ConfirmationType: form.ConfirmRedirect,
		Redirect:         &form.Redirect{URL: "https://globex.test/thanks"},
		Emails:           []form.EmailNotification{{EmailTo: "ops@globex.test"}},
	})
	require.NoError(t, err)

	h := NewHandler(tenants, users, forms, subs, authSvc, st)
	router := NewRouter(h, RouterConfig{RateLimiter: rl, Metrics: metrics.NewHTTPMetrics("tenantforms")})

	return &testServer{router: router, store: st, demo: demo, other: other, otherFrm: otherForm}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestPurpose: Validates the public form catalogue lookups and their error bodies.
// Scope: Unit Test
// Security: Information exposure through public endpoints (CWE-200)
// Expected: 400 without parameters, 404 for unknown tenant or form, and no tenant or notification addresses in results.
// Test Case ID: API-01
func TestPublicForms_List(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/forms", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Either tenant slug or form ID is required", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/api/forms?tenant=nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tenant not found", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/api/forms?id=nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Form not found", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/api/forms?tenant="+seed.TenantSlug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	forms := decode(t, w)["forms"].([]any)
	require.Len(t, forms, 1)
	contact := forms[0].(map[string]any)
	assert.Equal(t, seed.ContactFormTitle, contact["title"])
	assert.Len(t, contact["fields"], 4)
	assert.NotContains(t, contact, "tenant")

	w = s.do(t, http.MethodGet, "/api/forms?id="+s.otherFrm.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feedback := decode(t, w)["forms"].([]any)[0].(map[string]any)
	assert.NotContains(t, feedback, "emails")
	assert.Contains(t, feedback, "redirect")
}

// TestPurpose: Validates that public submissions take their tenant from the form.
// Scope: Unit Test
// Security: Cross-tenant data injection (CWE-639)
// Expected: A client-supplied tenant is ignored; submitter IP and user agent are recorded.
// Test Case ID: API-02
func TestPublicForms_Submit(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/forms", "", map[string]any{"formId": s.demo.ContactFormID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Form ID and submission data are required", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/forms", "", map[string]any{
		"formId":         "missing",
		"submissionData": map[string]any{"comment": "x"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Form not found", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/api/forms", "", map[string]any{
		"formId": s.demo.ContactFormID,
		"tenant": s.other.ID,
		"submissionData": []map[string]any{
			{"field": "fullName", "value": "Ada Lovelace"},
			{"field": "email", "value": "ada@example.com"},
			{"field": "subject", "value": "Hello"},
			{"field": "message", "value": "Hi"},
		},
	}, "X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, seed.ContactFormMessage, resp["message"])
	assert.Nil(t, resp["redirectUrl"])

	stored, err := s.store.Submissions().GetByID(context.Background(), resp["submissionId"].(string))
	require.NoError(t, err)
	assert.Equal(t, s.demo.TenantID, stored.TenantID)
	assert.Equal(t, "203.0.113.7", stored.SubmitterIP)
	assert.Equal(t, "unknown", stored.SubmitterUserAgent)
}

func TestPublicForms_SubmitRedirectAndValidation(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/forms", "", map[string]any{
		"formId":         s.otherFrm.ID,
		"submissionData": map[string]any{"comment": "great"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://globex.test/thanks", decode(t, w)["redirectUrl"])

	w = s.do(t, http.MethodPost, "/api/forms", "", map[string]any{
		"formId":         s.demo.ContactFormID,
		"submissionData": map[string]any{"fullName": "Ada"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestPurpose: Validates bearer token handling on the API.
// Scope: Unit Test
// Security: Authentication bypass (CWE-287)
// Expected: Bad credentials and bad tokens yield 401 on authenticated routes; public routes treat a bad token as anonymous; a valid token resolves the caller.
// Test Case ID: API-03
func TestAuth_LoginAndMe(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": seed.TenantAdminEmail, "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/forms", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/forms?tenant="+seed.TenantSlug, "not-a-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/forms", "stale.jwt.token", map[string]any{
		"formId":         s.otherFrm.ID,
		"submissionData": map[string]any{"comment": "still counts"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored, err := s.store.Submissions().GetByID(context.Background(), decode(t, w)["submissionId"].(string))
	require.NoError(t, err)
	assert.Equal(t, s.other.ID, stored.TenantID)

	token := s.login(t, seed.TenantAdminEmail, seed.TenantAdminPass)
	w = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, seed.TenantAdminEmail, me["email"])
	assert.Equal(t, "tenant-admin", me["role"])
	assert.NotContains(t, me, "tenant")
}

// TestPurpose: Validates tenant isolation of the admin API for tenant administrators.
// Scope: Unit Test
// Security: Insecure direct object reference (CWE-639)
// Expected: Another tenant's records read as 404 and never appear in lists; forms are stamped with the caller's tenant.
// Test Case ID: API-04
func TestAdmin_TenantIsolation(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, seed.TenantAdminEmail, seed.TenantAdminPass)

	w := s.do(t, http.MethodGet, "/api/admin/forms/"+s.otherFrm.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, "/api/admin/forms/"+s.otherFrm.ID, token, map[string]any{"title": "pwned"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/forms?tenant="+s.other.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["totalDocs"])

	w = s.do(t, http.MethodGet, "/api/admin/forms", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["totalDocs"])

	w = s.do(t, http.MethodPost, "/api/admin/forms", token, map[string]any{
		"title":  "Newsletter",
		"tenant": s.other.ID,
		"fields": []map[string]any{{"name": "email", "label": "Email", "type": "email", "required": true}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	f, err := s.store.Forms().GetByID(context.Background(), created["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, s.demo.TenantID, f.TenantID)

	w = s.do(t, http.MethodPost, "/api/forms", "", map[string]any{
		"formId":         s.otherFrm.ID,
		"submissionData": map[string]any{"comment": "hello"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	subID := decode(t, w)["submissionId"].(string)

	w = s.do(t, http.MethodGet, "/api/admin/submissions/"+subID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/submissions?form="+s.otherFrm.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["totalDocs"])
}

// TestPurpose: Validates that writes outside the caller's permissions are forbidden.
// Scope: Unit Test
// Security: Privilege escalation (CWE-269)
// Expected: A tenant admin may read but not modify its tenant, and may not change a submission's form.
// Test Case ID: API-05
func TestAdmin_WriteDenials(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, seed.TenantAdminEmail, seed.TenantAdminPass)

	w := s.do(t, http.MethodGet, "/api/tenants/"+s.demo.TenantID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, "/api/tenants/"+s.demo.TenantID, token, map[string]any{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/tenants", token, map[string]any{"name": "Rogue"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/forms", "", map[string]any{
		"formId": s.demo.ContactFormID,
		"submissionData": map[string]any{
			"fullName": "Ada", "email": "ada@example.com", "subject": "s", "message": "m",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	subID := decode(t, w)["submissionId"].(string)

	w = s.do(t, http.MethodPatch, "/api/admin/submissions/"+subID, token, map[string]any{"form": s.otherFrm.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/admin/submissions/"+subID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdmin_SuperAdminManagesTenants(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, seed.SuperAdminEmail, seed.SuperAdminPassword)

	w := s.do(t, http.MethodPost, "/api/tenants", token, map[string]any{"name": "Initech"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "initech", decode(t, w)["slug"])

	w = s.do(t, http.MethodPost, "/api/tenants", token, map[string]any{"name": "Initech"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodDelete, "/api/tenants/"+s.other.ID, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "tenants that own forms cannot be deleted")

	w = s.do(t, http.MethodGet, "/api/tenants", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["totalDocs"])

	w = s.do(t, http.MethodPost, "/api/tenants", token, map[string]any{"name": "X", "unknown": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit_PublicSubmit(t *testing.T) {
	s := newTestServer(t, NewRateLimiter(0.001, 1))
	body := map[string]any{"formId": s.otherFrm.ID, "submissionData": map[string]any{"comment": "x"}}

	w := s.do(t, http.MethodPost, "/api/forms", "", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/forms", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded first hop", headers: map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, remote: "9.9.9.9:1", want: "1.1.1.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "3.3.3.3"}, remote: "9.9.9.9:1", want: "3.3.3.3"},
		{name: "remote addr", remote: "9.9.9.9:1234", want: "9.9.9.9"},
		{name: "nothing", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
