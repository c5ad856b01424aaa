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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tenantforms/tenantforms/internal/audit"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps OpenTelemetry meter
type Meter struct {
	meter metric.Meter
}

// New creates a new meter instance backed by the global meter provider.
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	if !cfg.Enabled {
		return &Meter{
			meter: otel.Meter("noop"),
		}, nil
	}
	return &Meter{
		meter: otel.Meter(serviceName),
	}, nil
}

// GetMeter returns the underlying meter
func (m *Meter) GetMeter() metric.Meter {
	return m.meter
}

// CreateCounter creates a new counter metric
func (m *Meter) CreateCounter(name, description string) (metric.Int64Counter, error) {
	counter, err := m.meter.Int64Counter(
		name,
		metric.WithDescription(description),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return counter, nil
}

// Counter is the subset of metric.Int64Counter the recorders use.
type Counter interface {
	Add(ctx context.Context, incr int64, options ...metric.AddOption)
}

// Domain holds the business counters of the service.
type Domain struct {
	SubmissionsCreated Counter
	AccessDenied       Counter
	LoginFailed        Counter
}

// NewDomain registers the business counters on m.
func NewDomain(m *Meter) (*Domain, error) {
	submissions, err := m.CreateCounter("tenantforms.submissions.created", "Form submissions accepted")
	if err != nil {
		return nil, err
	}
	denied, err := m.CreateCounter("tenantforms.policy.denied", "Operations rejected by the access policy")
	if err != nil {
		return nil, err
	}
	logins, err := m.CreateCounter("tenantforms.login.failed", "Rejected login attempts")
	if err != nil {
		return nil, err
	}
	return &Domain{SubmissionsCreated: submissions, AccessDenied: denied, LoginFailed: logins}, nil
}

// AuditRecorder counts audit events on the domain counters before passing
// them on to the wrapped audit logger.
type AuditRecorder struct {
	next   audit.Logger
	domain *Domain
}

// NewAuditRecorder wraps next.
func NewAuditRecorder(next audit.Logger, domain *Domain) *AuditRecorder {
	return &AuditRecorder{next: next, domain: domain}
}

// Log implements audit.Logger.
func (r *AuditRecorder) Log(ctx context.Context, event audit.Event) {
	tenantAttr := metric.WithAttributes(attribute.String("tenant", event.TenantID))
	switch event.Type {
	case audit.TypeSubmissionCreated:
		r.domain.SubmissionsCreated.Add(ctx, 1, tenantAttr)
	case audit.TypeAccessDenied:
		op, _ := event.Metadata[audit.AttrOperation].(string)
		r.domain.AccessDenied.Add(ctx, 1, metric.WithAttributes(
			attribute.String("resource", event.Resource),
			attribute.String("operation", op),
		))
	case audit.TypeLoginFailed:
		r.domain.LoginFailed.Add(ctx, 1)
	}
	r.next.Log(ctx, event)
}
