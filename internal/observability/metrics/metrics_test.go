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

package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"

	"github.com/tenantforms/tenantforms/internal/audit"
)

type countingCounter struct{ n int64 }

func (c *countingCounter) Add(_ context.Context, incr int64, _ ...metric.AddOption) { c.n += incr }

type recordingAudit struct{ events []audit.Event }

func (r *recordingAudit) Log(_ context.Context, e audit.Event) { r.events = append(r.events, e) }

// TestPurpose: Validates that audit events drive the business counters.
// Scope: Unit Test
// Security: Monitoring of policy denials (CWE-778)
// Expected: Each counted event increments exactly one counter and is still forwarded.
// Test Case ID: MET-01
func TestAuditRecorder_CountsEvents(t *testing.T) {
	sub, denied, logins := &countingCounter{}, &countingCounter{}, &countingCounter{}
	next := &recordingAudit{}
	rec := NewAuditRecorder(next, &Domain{SubmissionsCreated: sub, AccessDenied: denied, LoginFailed: logins})

	ctx := context.Background()
	rec.Log(ctx, audit.Event{Type: audit.TypeSubmissionCreated, TenantID: "t1"})
	rec.Log(ctx, audit.Event{Type: audit.TypeSubmissionCreated, TenantID: "t2"})
	rec.Log(ctx, audit.Event{Type: audit.TypeAccessDenied, Resource: audit.ResourceForm, Metadata: map[string]any{audit.AttrOperation: "update"}})
	rec.Log(ctx, audit.Event{Type: audit.TypeLoginFailed})
	rec.Log(ctx, audit.Event{Type: audit.TypeFormCreated})

	assert.Equal(t, int64(2), sub.n)
	assert.Equal(t, int64(1), denied.n)
	assert.Equal(t, int64(1), logins.n)
	assert.Len(t, next.events, 5)
}

func TestNewDomain_Disabled(t *testing.T) {
	m, err := New(context.Background(), Config{Enabled: false}, "tenantforms")
	require.NoError(t, err)
	d, err := NewDomain(m)
	require.NoError(t, err)
	assert.NotNil(t, d.SubmissionsCreated)
}

// TestPurpose: Validates that HTTP metrics are labelled by route pattern.
// Scope: Unit Test
// Security: N/A
// Expected: Two requests to different ids of one route share a single series.
// Test Case ID: MET-02
func TestHTTPMetrics_Middleware(t *testing.T) {
	m := NewHTTPMetrics("tenantforms")
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/forms/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/forms/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/forms/{id}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenantforms_http_requests_total")
}
