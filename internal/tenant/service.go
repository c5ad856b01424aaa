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

package tenant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tenantforms/tenantforms/internal/apperr"
	"github.com/tenantforms/tenantforms/internal/audit"
	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/id"
	"github.com/tenantforms/tenantforms/internal/identity"
)

const msgNotFound = "Tenant not found"

// CreateInput carries the writable attributes of a new tenant. A nil
// IsActive or Settings selects the defaults.
type CreateInput struct {
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Domain   string    `json:"domain"`
	IsActive *bool     `json:"isActive"`
	Settings *Settings `json:"settings"`
}

// UpdateInput carries a partial tenant update. Nil fields are left as is.
type UpdateInput struct {
	Name     *string   `json:"name"`
	Slug     *string   `json:"slug"`
	Domain   *string   `json:"domain"`
	IsActive *bool     `json:"isActive"`
	Settings *Settings `json:"settings"`
}

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
	now         func() time.Time
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// CreateTenant creates a new tenant. Only super-admins may create tenants.
func (s *Service) CreateTenant(ctx context.Context, caller identity.Identity, in CreateInput) (*Tenant, error) {
	if !authz.Evaluate(caller, authz.EntityTenants, authz.OpCreate).Allowed() {
		return nil, s.denied(ctx, caller, "", authz.OpCreate)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("tenant name is required")
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if !ValidSlug(slug) {
		return nil, apperr.Validation("invalid tenant slug %q", slug)
	}

	settings := DefaultSettings()
	if in.Settings != nil {
		settings = *in.Settings
	}
	if settings.MaxForms < 0 {
		return nil, apperr.Validation("maxForms must not be negative")
	}

	now := s.now().UTC()
	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      name,
		Slug:      slug,
		Domain:    strings.TrimSpace(in.Domain),
		IsActive:  in.IsActive == nil || *in.IsActive,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceTenant,
		Metadata: map[string]any{audit.AttrSlug: t.Slug},
	})

	return t, nil
}

// GetTenant retrieves a tenant by ID. Tenants outside the caller's scope
// are reported as not found.
func (s *Service) GetTenant(ctx context.Context, caller identity.Identity, tenantID string) (*Tenant, error) {
	decision := authz.Evaluate(caller, authz.EntityTenants, authz.OpRead)
	if !decision.Allowed() {
		return nil, s.denied(ctx, caller, tenantID, authz.OpRead)
	}

	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, storeError(err)
	}
	if !decision.Permits(t) {
		return nil, apperr.NotFound(msgNotFound, ErrTenantNotFound)
	}
	return t, nil
}

// GetBySlug returns the active tenant with the given slug. It backs the
// public form catalogue and is not subject to caller policy.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	if slug == "" {
		return nil, apperr.Validation("tenant slug is required")
	}
	t, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err)
	}
	if !t.IsActive {
		return nil, apperr.NotFound(msgNotFound, ErrTenantNotFound)
	}
	return t, nil
}

// ListTenants lists the tenants visible to caller that also match filter.
func (s *Service) ListTenants(ctx context.Context, caller identity.Identity, filter authz.Filter) ([]*Tenant, error) {
	scoped, err := authz.Evaluate(caller, authz.EntityTenants, authz.OpRead).Apply(filter)
	if err != nil {
		return nil, s.denied(ctx, caller, "", authz.OpRead)
	}
	if scoped.MatchesNothing() {
		return []*Tenant{}, nil
	}

	tenants, err := s.repo.List(ctx, scoped)
	if err != nil {
		return nil, storeError(err)
	}
	return tenants, nil
}

// UpdateTenant applies a partial update.
func (s *Service) UpdateTenant(ctx context.Context, caller identity.Identity, tenantID string, in UpdateInput) (*Tenant, error) {
	t, err := s.GetTenant(ctx, caller, tenantID)
	if err != nil {
		return nil, err
	}
	if !authz.Evaluate(caller, authz.EntityTenants, authz.OpUpdate).Permits(t) {
		return nil, s.denied(ctx, caller, tenantID, authz.OpUpdate)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("tenant name is required")
		}
		t.Name = name
	}
	if in.Slug != nil {
		if !ValidSlug(*in.Slug) {
			return nil, apperr.Validation("invalid tenant slug %q", *in.Slug)
		}
		t.Slug = *in.Slug
	}
	if in.Domain != nil {
		t.Domain = strings.TrimSpace(*in.Domain)
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if in.Settings != nil {
		if in.Settings.MaxForms < 0 {
			return nil, apperr.Validation("maxForms must not be negative")
		}
		t.Settings = *in.Settings
	}
	t.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantUpdated,
		TenantID: t.ID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceTenant,
	})
	return t, nil
}

// DeleteTenant removes a tenant.
func (s *Service) DeleteTenant(ctx context.Context, caller identity.Identity, tenantID string) error {
	t, err := s.GetTenant(ctx, caller, tenantID)
	if err != nil {
		return err
	}
	if !authz.Evaluate(caller, authz.EntityTenants, authz.OpDelete).Permits(t) {
		return s.denied(ctx, caller, tenantID, authz.OpDelete)
	}

	if err := s.repo.Delete(ctx, t.ID); err != nil {
		return storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeleted,
		TenantID: t.ID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceTenant,
		Metadata: map[string]any{audit.AttrSlug: t.Slug},
	})
	return nil
}

func (s *Service) denied(ctx context.Context, caller identity.Identity, tenantID string, op authz.Operation) error {
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccessDenied,
		TenantID: tenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceTenant,
		Metadata: map[string]any{
			audit.AttrOperation: string(op),
			audit.AttrRole:      string(caller.EffectiveRole()),
		},
	})
	return apperr.AccessDenied("You are not allowed to perform this action", authz.ErrAccessDenied)
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		return apperr.NotFound(msgNotFound, err)
	case errors.Is(err, ErrTenantAlreadyExists):
		return apperr.Conflict(ErrTenantAlreadyExists.Error(), err)
	case errors.Is(err, ErrTenantInUse):
		return apperr.Conflict(ErrTenantInUse.Error(), err)
	}
	return apperr.Infrastructure("tenant store", err)
}
