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

package form

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
	"github.com/tenantforms/tenantforms/internal/tenant"
)

const msgNotFound = "Form not found"

// TenantLookup resolves the owner of a form.
type TenantLookup interface {
	GetByID(ctx context.Context, id string) (*tenant.Tenant, error)
}

// CreateInput carries a new form definition. TenantID is only honoured for
// super-admin callers.
type CreateInput struct {
	Title               string              `json:"title"`
	TenantID            string              `json:"tenant"`
	Fields              []Field             `json:"fields"`
	ConfirmationType    ConfirmationType    `json:"confirmationType"`
	ConfirmationMessage string              `json:"confirmationMessage"`
	Redirect            *Redirect           `json:"redirect"`
	Emails              []EmailNotification `json:"emails"`
}

// UpdateInput is a partial form update. Nil fields are left as is.
type UpdateInput struct {
	Title               *string              `json:"title"`
	TenantID            *string              `json:"tenant"`
	Fields              *[]Field             `json:"fields"`
	ConfirmationType    *ConfirmationType    `json:"confirmationType"`
	ConfirmationMessage *string              `json:"confirmationMessage"`
	Redirect            *Redirect            `json:"redirect"`
	Emails              *[]EmailNotification `json:"emails"`
}

// StampTenant decides the owning tenant of a new form. Super-admins must
// name the tenant; everyone else has it overwritten with their own.
func StampTenant(caller identity.Identity, requested string) (string, error) {
	if caller.IsSuperAdmin() {
		requested = strings.TrimSpace(requested)
		if requested == "" {
			return "", apperr.Validation("form tenant is required")
		}
		return requested, nil
	}
	return caller.TenantID, nil
}

// Service provides form management business logic
type Service struct {
	repo        Repository
	tenants     TenantLookup
	auditLogger audit.Logger
	now         func() time.Time
}

// NewService creates a new form service
func NewService(repo Repository, tenants TenantLookup, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		tenants:     tenants,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// CreateForm stores a new form for caller's tenant, subject to the tenant's
// settings.
func (s *Service) CreateForm(ctx context.Context, caller identity.Identity, in CreateInput) (*Form, error) {
	decision := authz.Evaluate(caller, authz.EntityForms, authz.OpCreate)
	if !decision.Allowed() {
		return nil, s.denied(ctx, caller, caller.TenantID, authz.OpCreate)
	}

	tenantID, err := StampTenant(caller, in.TenantID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	f := &Form{
		ID:                  id.NewUUIDv7(),
		Title:               strings.TrimSpace(in.Title),
		TenantID:            tenantID,
		Fields:              in.Fields,
		ConfirmationType:    in.ConfirmationType,
		ConfirmationMessage: in.ConfirmationMessage,
		Redirect:            in.Redirect,
		Emails:              in.Emails,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if f.ConfirmationType == "" {
		f.ConfirmationType = ConfirmMessage
	}
	if !decision.Permits(f) {
		return nil, s.denied(ctx, caller, tenantID, authz.OpCreate)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTenantAllows(ctx, caller, tenantID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, apperr.Infrastructure("form store", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeFormCreated,
		TenantID: f.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceForm,
		Metadata: map[string]any{audit.AttrFormID: f.ID},
	})
	return f, nil
}

func (s *Service) checkTenantAllows(ctx context.Context, caller identity.Identity, tenantID string) error {
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return apperr.Validation("tenant %q does not exist", tenantID)
		}
		return apperr.Infrastructure("tenant store", err)
	}
	if !t.IsActive || !t.Settings.AllowFormCreation {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAccessDenied,
			TenantID: tenantID,
			ActorID:  caller.UserID,
			Resource: audit.ResourceForm,
			Metadata: map[string]any{
				audit.AttrOperation: string(authz.OpCreate),
				audit.AttrReason:    "form_creation_disabled",
			},
		})
		return apperr.AccessDenied("Form creation is disabled for this tenant", authz.ErrAccessDenied)
	}

	n, err := s.repo.Count(ctx, authz.Where(authz.Equals(authz.FieldTenant, tenantID)))
	if err != nil {
		return apperr.Infrastructure("form store", err)
	}
	if n >= t.Settings.MaxForms {
		return apperr.Validation("tenant has reached its limit of %d forms", t.Settings.MaxForms)
	}
	return nil
}

// GetForm retrieves a form by ID. Forms outside the caller's scope are
// reported as not found.
func (s *Service) GetForm(ctx context.Context, caller identity.Identity, formID string) (*Form, error) {
	decision := authz.Evaluate(caller, authz.EntityForms, authz.OpRead)
	if !decision.Allowed() {
		return nil, s.denied(ctx, caller, "", authz.OpRead)
	}

	f, err := s.repo.GetByID(ctx, formID)
	if err != nil {
		return nil, storeError(err)
	}
	if !decision.Permits(f) {
		return nil, apperr.NotFound(msgNotFound, ErrFormNotFound)
	}
	return f, nil
}

// ListForms lists the forms visible to caller that also match filter.
func (s *Service) ListForms(ctx context.Context, caller identity.Identity, filter authz.Filter) ([]*Form, error) {
	scoped, err := authz.Evaluate(caller, authz.EntityForms, authz.OpRead).Apply(filter)
	if err != nil {
		return nil, s.denied(ctx, caller, "", authz.OpRead)
	}
	if scoped.MatchesNothing() {
		return []*Form{}, nil
	}

	forms, err := s.repo.Find(ctx, scoped)
	if err != nil {
		return nil, storeError(err)
	}
	return forms, nil
}

// UpdateForm applies a partial update. The owning tenant of a form never
// changes after creation.
func (s *Service) UpdateForm(ctx context.Context, caller identity.Identity, formID string, in UpdateInput) (*Form, error) {
	f, err := s.GetForm(ctx, caller, formID)
	if err != nil {
		return nil, err
	}
	if !authz.Evaluate(caller, authz.EntityForms, authz.OpUpdate).Permits(f) {
		return nil, s.denied(ctx, caller, f.TenantID, authz.OpUpdate)
	}
	if in.TenantID != nil && *in.TenantID != f.TenantID {
		return nil, apperr.Validation("form tenant cannot be changed")
	}

	if in.Title != nil {
		f.Title = strings.TrimSpace(*in.Title)
	}
	if in.Fields != nil {
		f.Fields = *in.Fields
	}
	if in.ConfirmationType != nil {
		f.ConfirmationType = *in.ConfirmationType
	}
	if in.ConfirmationMessage != nil {
		f.ConfirmationMessage = *in.ConfirmationMessage
	}
	if in.Redirect != nil {
		f.Redirect = in.Redirect
	}
	if in.Emails != nil {
		f.Emails = *in.Emails
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeFormUpdated,
		TenantID: f.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceForm,
		Metadata: map[string]any{audit.AttrFormID: f.ID},
	})
	return f, nil
}

// DeleteForm removes a form.
func (s *Service) DeleteForm(ctx context.Context, caller identity.Identity, formID string) error {
	f, err := s.GetForm(ctx, caller, formID)
	if err != nil {
		return err
	}
	if !authz.Evaluate(caller, authz.EntityForms, authz.OpDelete).Permits(f) {
		return s.denied(ctx, caller, f.TenantID, authz.OpDelete)
	}
	if err := s.repo.Delete(ctx, f.ID); err != nil {
		return storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeFormDeleted,
		TenantID: f.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceForm,
		Metadata: map[string]any{audit.AttrFormID: f.ID},
	})
	return nil
}

// PublicByID returns a form for the public catalogue. Forms of inactive
// tenants are not found, matching the lookup by tenant slug.
func (s *Service) PublicByID(ctx context.Context, formID string) (*Form, error) {
	if formID == "" {
		return nil, apperr.Validation("form id is required")
	}
	f, err := s.repo.GetByID(ctx, formID)
	if err != nil {
		return nil, storeError(err)
	}
	t, err := s.tenants.GetByID(ctx, f.TenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, apperr.NotFound(msgNotFound, ErrFormNotFound)
		}
		return nil, apperr.Infrastructure("tenant store", err)
	}
	if !t.IsActive {
		return nil, apperr.NotFound(msgNotFound, ErrFormNotFound)
	}
	return f, nil
}

// PublicByTenant returns every form of a tenant for the public catalogue.
func (s *Service) PublicByTenant(ctx context.Context, tenantID string) ([]*Form, error) {
	forms, err := s.repo.Find(ctx, authz.Where(authz.Equals(authz.FieldTenant, tenantID)))
	if err != nil {
		return nil, storeError(err)
	}
	return forms, nil
}

func (s *Service) denied(ctx context.Context, caller identity.Identity, tenantID string, op authz.Operation) error {
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccessDenied,
		TenantID: tenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceForm,
		Metadata: map[string]any{
			audit.AttrOperation: string(op),
			audit.AttrRole:      string(caller.EffectiveRole()),
		},
	})
	return apperr.AccessDenied("You are not allowed to perform this action", authz.ErrAccessDenied)
}

func storeError(err error) error {
	if errors.Is(err, ErrFormNotFound) {
		return apperr.NotFound(msgNotFound, err)
	}
	return apperr.Infrastructure("form store", err)
}
