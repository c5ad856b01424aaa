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

// Package seed loads the demo tenant, its administrators and a contact form.
// Running it twice leaves the store unchanged.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/identity"
	"github.com/tenantforms/tenantforms/internal/observability/logger"
	"github.com/tenantforms/tenantforms/internal/tenant"
	"github.com/tenantforms/tenantforms/internal/user"
)

// Demo data
const (
	TenantName   = "WeframeTech Demo"
	TenantSlug   = "weframetech-demo"
	TenantDomain = "demo.weframetech.com"

	SuperAdminEmail    = "admin@weframetech.com"
	SuperAdminPassword = "admin123"
	TenantAdminEmail   = "tenant@weframetech.com"
	TenantAdminPass    = "tenant123"

	ContactFormTitle   = "Contact Us Form"
	ContactFormMessage = "Thank you for contacting us! We will get back to you soon."
)

// system is the identity the seed acts as.
var system = identity.Identity{UserID: "system", Role: identity.RoleSuperAdmin}

// Result reports what the seed found or created.
type Result struct {
	TenantID      string
	SuperAdminID  string
	TenantAdminID string
	ContactFormID string
	Created       int
}

// Seeder writes demo data through the domain services so that every
// validation and audit path applies.
type Seeder struct {
	tenants *tenant.Service
	users   *user.Service
	forms   *form.Service
	log     *slog.Logger
}

// New creates a seeder.
func New(tenants *tenant.Service, users *user.Service, forms *form.Service, log *slog.Logger) *Seeder {
	if log == nil {
		log = slog.Default()
	}
	return &Seeder{tenants: tenants, users: users, forms: forms, log: log.With(logger.Component("seed"))}
}

// Run creates whatever part of the demo data is missing.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	t, err := s.ensureTenant(ctx, res)
	if err != nil {
		return nil, err
	}
	res.TenantID = t.ID

	super, err := s.ensureUser(ctx, res, user.CreateInput{
		Email:     SuperAdminEmail,
		Password:  SuperAdminPassword,
		FirstName: "Super",
		LastName:  "Admin",
		Role:      identity.RoleSuperAdmin,
	})
	if err != nil {
		return nil, err
	}
	res.SuperAdminID = super.ID

	admin, err := s.ensureUser(ctx, res, user.CreateInput{
		Email:     TenantAdminEmail,
		Password:  TenantAdminPass,
		FirstName: "Tenant",
		LastName:  "Admin",
		Role:      identity.RoleTenantAdmin,
		TenantID:  t.ID,
	})
	if err != nil {
		return nil, err
	}
	res.TenantAdminID = admin.ID

	f, err := s.ensureContactForm(ctx, res, t.ID)
	if err != nil {
		return nil, err
	}
	res.ContactFormID = f.ID

	s.log.InfoContext(ctx, "seed completed",
		logger.TenantID(res.TenantID),
		logger.FormID(res.ContactFormID),
		slog.Int("created", res.Created),
	)
	return res, nil
}

func (s *Seeder) ensureTenant(ctx context.Context, res *Result) (*tenant.Tenant, error) {
	found, err := s.tenants.ListTenants(ctx, system, authz.Where(authz.Equals(authz.FieldSlug, TenantSlug)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up demo tenant: %w", err)
	}
	if len(found) > 0 {
		return found[0], nil
	}

	active := true
	t, err := s.tenants.CreateTenant(ctx, system, tenant.CreateInput{
		Name:     TenantName,
		Slug:     TenantSlug,
		Domain:   TenantDomain,
		IsActive: &active,
		Settings: &tenant.Settings{AllowFormCreation: true, MaxForms: tenant.DefaultMaxForms},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create demo tenant: %w", err)
	}
	res.Created++
	s.log.InfoContext(ctx, "created tenant", logger.TenantID(t.ID), logger.String("name", t.Name))
	return t, nil
}

func (s *Seeder) ensureUser(ctx context.Context, res *Result, in user.CreateInput) (*user.User, error) {
	found, err := s.users.ListUsers(ctx, system, authz.Where(authz.Equals(authz.FieldEmail, in.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", in.Email, err)
	}
	if len(found) > 0 {
		return found[0], nil
	}

	u, err := s.users.CreateUser(ctx, system, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", in.Email, err)
	}
	res.Created++
	s.log.InfoContext(ctx, "created user", logger.UserID(u.ID), logger.Role(string(u.Role)))
	return u, nil
}

func (s *Seeder) ensureContactForm(ctx context.Context, res *Result, tenantID string) (*form.Form, error) {
	found, err := s.forms.ListForms(ctx, system, authz.Where(
		authz.Equals(authz.FieldTenant, tenantID),
		authz.Equals("title", ContactFormTitle),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact form: %w", err)
	}
	if len(found) > 0 {
		return found[0], nil
	}

	f, err := s.forms.CreateForm(ctx, system, form.CreateInput{
		Title:               ContactFormTitle,
		TenantID:            tenantID,
		Fields:              ContactFields(),
		ConfirmationType:    form.ConfirmMessage,
		ConfirmationMessage: ContactFormMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create contact form: %w", err)
	}
	res.Created++
	s.log.InfoContext(ctx, "created form", logger.FormID(f.ID), logger.TenantID(tenantID))
	return f, nil
}

// ContactFields are the inputs of the demo contact form.
func ContactFields() []form.Field {
	return []form.Field{
		{Name: "fullName", Label: "Full Name", Type: form.FieldText, Required: true, Placeholder: "Enter your full name"},
		{Name: "email", Label: "Email Address", Type: form.FieldEmail, Required: true, Placeholder: "Enter your email address"},
		{Name: "subject", Label: "Subject", Type: form.FieldText, Required: true, Placeholder: "What is this regarding?"},
		{Name: "message", Label: "Message", Type: form.FieldTextarea, Required: true, Placeholder: "Tell us how we can help you..."},
	}
}
