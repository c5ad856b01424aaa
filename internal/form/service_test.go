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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantforms/tenantforms/internal/apperr"
	"github.com/tenantforms/tenantforms/internal/audit"
	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/identity"
	"github.com/tenantforms/tenantforms/internal/tenant"
)

type fakeRepo struct {
	mu    sync.Mutex
	forms map[string]*Form
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{forms: make(map[string]*Form)}
}

func (r *fakeRepo) Create(_ context.Context, f *Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *f
	r.forms[f.ID] = &c
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	c := *f
	return &c, nil
}

func (r *fakeRepo) Update(_ context.Context, f *Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *f
	r.forms[f.ID] = &c
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
	return nil
}

func (r *fakeRepo) Find(_ context.Context, filter authz.Filter) ([]*Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Form{}
	for _, f := range r.forms {
		if filter.Matches(f) {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeRepo) Count(ctx context.Context, filter authz.Filter) (int, error) {
	forms, err := r.Find(ctx, filter)
	return len(forms), err
}

type fakeTenants map[string]*tenant.Tenant

func (t fakeTenants) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	if v, ok := t[id]; ok {
		return v, nil
	}
	return nil, tenant.ErrTenantNotFound
}

type discardAudit struct{}

func (discardAudit) Log(context.Context, audit.Event) {}

var (
	superAdmin = identity.Identity{UserID: "u-super", Role: identity.RoleSuperAdmin}
	acmeAdmin  = identity.Identity{UserID: "u-acme", Role: identity.RoleTenantAdmin, TenantID: "t-acme"}
	acmeUser   = identity.Identity{UserID: "u-acme-user", Role: identity.RoleUser, TenantID: "t-acme"}
	globexUser = identity.Identity{UserID: "u-globex", Role: identity.RoleTenantAdmin, TenantID: "t-globex"}
)

func testTenants() fakeTenants {
	return fakeTenants{
		"t-acme":    {ID: "t-acme", Slug: "acme", IsActive: true, Settings: tenant.DefaultSettings()},
		"t-globex":  {ID: "t-globex", Slug: "globex", IsActive: true, Settings: tenant.DefaultSettings()},
		"t-closed":  {ID: "t-closed", Slug: "closed", IsActive: true, Settings: tenant.Settings{AllowFormCreation: false, MaxForms: 10}},
		"t-dormant": {ID: "t-dormant", Slug: "dormant", IsActive: false, Settings: tenant.DefaultSettings()},
		"t-tiny":    {ID: "t-tiny", Slug: "tiny", IsActive: true, Settings: tenant.Settings{AllowFormCreation: true, MaxForms: 1}},
	}
}

func contactInput() CreateInput {
	return CreateInput{
		Title: "Contact Us",
		Fields: []Field{
			{Name: "fullName", Label: "Full Name", Type: FieldText, Required: true},
			{Name: "email", Label: "Email", Type: FieldEmail, Required: true},
		},
	}
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, testTenants(), discardAudit{}), repo
}

// TestPurpose: Validates that a tenant-admin's forms are always stamped with their own tenant.
// Scope: Unit Test
// Security: Tenant isolation on create
// Expected: A client-supplied foreign tenant is overwritten with the caller's tenant.
// Test Case ID: FRM-01
func TestService_CreateForm_StampsCallerTenant(t *testing.T) {
	svc, _ := newTestService()
	in := contactInput()
	in.TenantID = "t-globex"

	f, err := svc.CreateForm(context.Background(), acmeAdmin, in)

	require.NoError(t, err)
	assert.Equal(t, "t-acme", f.TenantID)
	assert.Equal(t, ConfirmMessage, f.ConfirmationType)
}

// TestPurpose: Validates that super-admins must name the owning tenant explicitly.
// Scope: Unit Test
// Security: No implicit tenant for unscoped callers
// Expected: Missing tenant is a validation error; a supplied tenant is kept.
// Test Case ID: FRM-02
func TestService_CreateForm_SuperAdminSuppliesTenant(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateForm(ctx, superAdmin, contactInput())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in := contactInput()
	in.TenantID = "t-globex"
	f, err := svc.CreateForm(ctx, superAdmin, in)
	require.NoError(t, err)
	assert.Equal(t, "t-globex", f.TenantID)

	in.TenantID = "t-missing"
	_, err = svc.CreateForm(ctx, superAdmin, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestService_CreateForm_Denied(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.CreateForm(ctx, acmeUser, contactInput())
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	_, err = svc.CreateForm(ctx, identity.Anonymous(), contactInput())
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	orphan := identity.Identity{UserID: "u-orphan", Role: identity.RoleTenantAdmin}
	_, err = svc.CreateForm(ctx, orphan, contactInput())
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	assert.Empty(t, repo.forms)
}

// TestPurpose: Validates that tenant settings gate form creation.
// Scope: Unit Test
// Security: Tenant-level feature control
// Expected: Inactive tenants and tenants with creation disabled are denied; the quota is a validation error.
// Test Case ID: FRM-03
func TestService_CreateForm_TenantSettings(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, tenantID := range []string{"t-closed", "t-dormant"} {
		in := contactInput()
		in.TenantID = tenantID
		_, err := svc.CreateForm(ctx, superAdmin, in)
		assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err), tenantID)
	}

	in := contactInput()
	in.TenantID = "t-tiny"
	_, err := svc.CreateForm(ctx, superAdmin, in)
	require.NoError(t, err)
	_, err = svc.CreateForm(ctx, superAdmin, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// TestPurpose: Validates scoped reads of forms.
// Scope: Unit Test
// Security: Tenant isolation on read
// Expected: A form of another tenant is not found by ID and absent from lists; super-admin sees all.
// Test Case ID: FRM-04
func TestService_ReadScoped(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	acmeForm, err := svc.CreateForm(ctx, acmeAdmin, contactInput())
	require.NoError(t, err)
	_, err = svc.CreateForm(ctx, globexUser, contactInput())
	require.NoError(t, err)

	_, err = svc.GetForm(ctx, globexUser, acmeForm.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := svc.GetForm(ctx, acmeUser, acmeForm.ID)
	require.NoError(t, err)
	assert.Equal(t, acmeForm.ID, got.ID)

	list, err := svc.ListForms(ctx, acmeUser, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t-acme", list[0].TenantID)

	// A caller filter for a foreign tenant is conjoined, not replaced.
	list, err = svc.ListForms(ctx, acmeUser, authz.Where(authz.Equals(authz.FieldTenant, "t-globex")))
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := svc.ListForms(ctx, superAdmin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListForms(ctx, identity.Anonymous(), nil)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestService_UpdateForm_TenantImmutable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	f, err := svc.CreateForm(ctx, acmeAdmin, contactInput())
	require.NoError(t, err)

	other := "t-globex"
	_, err = svc.UpdateForm(ctx, superAdmin, f.ID, UpdateInput{TenantID: &other})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	title := "Get in touch"
	updated, err := svc.UpdateForm(ctx, acmeAdmin, f.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Get in touch", updated.Title)
	assert.Equal(t, "t-acme", updated.TenantID)

	_, err = svc.UpdateForm(ctx, globexUser, f.ID, UpdateInput{Title: &title})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestService_DeleteForm(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	f, err := svc.CreateForm(ctx, acmeAdmin, contactInput())
	require.NoError(t, err)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.DeleteForm(ctx, globexUser, f.ID)))
	require.NoError(t, svc.DeleteForm(ctx, acmeAdmin, f.ID))
	assert.Empty(t, repo.forms)
}

func TestService_Public(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	f, err := svc.CreateForm(ctx, acmeAdmin, contactInput())
	require.NoError(t, err)

	got, err := svc.PublicByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Title, got.Title)

	_, err = svc.PublicByID(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	list, err := svc.PublicByTenant(ctx, "t-acme")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.PublicByTenant(ctx, "t-globex")
	require.NoError(t, err)
	assert.Empty(t, list)
}

// TestPurpose: Validates that the public catalogue hides forms of inactive tenants.
// Scope: Unit Test
// Security: Information exposure through public endpoints (CWE-200)
// Expected: A form whose tenant is inactive or gone is reported as "Form not found".
// Test Case ID: FRM-05
func TestService_PublicByID_InactiveTenant(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Form{ID: "f-dormant", TenantID: "t-dormant", Title: "Old"}))
	require.NoError(t, repo.Create(ctx, &Form{ID: "f-orphan", TenantID: "t-gone", Title: "Lost"}))

	for _, id := range []string{"f-dormant", "f-orphan"} {
		_, err := svc.PublicByID(ctx, id)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), id)
		assert.Equal(t, "Form not found", apperr.MessageOf(err), id)
	}
}

func TestForm_Validate(t *testing.T) {
	valid := func() *Form {
		return &Form{
			Title:            "Survey",
			TenantID:         "t-acme",
			ConfirmationType: ConfirmMessage,
			Fields: []Field{
				{Name: "color", Label: "Color", Type: FieldSelect, Options: []Option{{Label: "Red", Value: "red"}}},
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(f *Form)
	}{
		{"missing title", func(f *Form) { f.Title = "" }},
		{"missing tenant", func(f *Form) { f.TenantID = "" }},
		{"no fields", func(f *Form) { f.Fields = nil }},
		{"duplicate name", func(f *Form) { f.Fields = append(f.Fields, f.Fields[0]) }},
		{"unknown type", func(f *Form) { f.Fields[0].Type = "date" }},
		{"select without options", func(f *Form) { f.Fields[0].Options = nil }},
		{"redirect without url", func(f *Form) { f.ConfirmationType = ConfirmRedirect }},
		{"unknown confirmation", func(f *Form) { f.ConfirmationType = "popup" }},
		{"email without recipient", func(f *Form) { f.Emails = []EmailNotification{{EmailSubject: "New"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(f.Validate()))
		})
	}
}

func TestConfirmation(t *testing.T) {
	f := &Form{ConfirmationType: ConfirmMessage}
	assert.Equal(t, DefaultConfirmation, ConfirmationText(f))
	assert.Empty(t, RedirectURL(f))

	f.ConfirmationMessage = "Thanks!"
	assert.Equal(t, "Thanks!", ConfirmationText(f))

	f.ConfirmationType = ConfirmRedirect
	f.Redirect = &Redirect{URL: "https://example.com/thanks"}
	assert.Equal(t, "https://example.com/thanks", RedirectURL(f))
}
