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

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/submission"
	"github.com/tenantforms/tenantforms/internal/tenant"
	"github.com/tenantforms/tenantforms/internal/user"
)

func TestTenantRepository_Uniqueness(t *testing.T) {
	repo := New().Tenants()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &tenant.Tenant{ID: "t1", Name: "Acme", Slug: "acme"}))
	assert.ErrorIs(t, repo.Create(ctx, &tenant.Tenant{ID: "t2", Name: "acme", Slug: "acme-2"}), tenant.ErrTenantAlreadyExists)
	assert.ErrorIs(t, repo.Create(ctx, &tenant.Tenant{ID: "t3", Name: "Other", Slug: "acme"}), tenant.ErrTenantAlreadyExists)

	got, err := repo.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	got.Name = "Mutated"
	again, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", again.Name)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestTenantRepository_DeleteInUse(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Tenants().Create(ctx, &tenant.Tenant{ID: "t1", Name: "Acme", Slug: "acme"}))
	require.NoError(t, s.Forms().Create(ctx, &form.Form{ID: "f1", TenantID: "t1"}))

	assert.ErrorIs(t, s.Tenants().Delete(ctx, "t1"), tenant.ErrTenantInUse)
	require.NoError(t, s.Forms().Delete(ctx, "f1"))
	require.NoError(t, s.Tenants().Delete(ctx, "t1"))
	assert.ErrorIs(t, s.Tenants().Delete(ctx, "t1"), tenant.ErrTenantNotFound)
}

func TestUserRepository_EmailUnique(t *testing.T) {
	s := New()
	repo := s.Users()
	ctx := context.Background()

	assert.ErrorIs(t, repo.Create(ctx, &user.User{ID: "u0", Email: "z@acme.test", TenantID: "t1"}), user.ErrUnknownTenant)
	require.NoError(t, s.Tenants().Create(ctx, &tenant.Tenant{ID: "t1", Name: "Acme", Slug: "acme"}))
	require.NoError(t, repo.Create(ctx, &user.User{ID: "u1", Email: "a@acme.test", TenantID: "t1"}))
	assert.ErrorIs(t, repo.Create(ctx, &user.User{ID: "u2", Email: "a@acme.test"}), user.ErrUserAlreadyExists)

	got, err := repo.GetByEmail(ctx, "a@acme.test")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	list, err := repo.List(ctx, authz.Where(authz.Equals(authz.FieldTenant, "t1")))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// TestPurpose: Validates that in-memory queries honour scoped filters.
// Scope: Unit Test
// Security: Tenant isolation at the storage layer
// Expected: A tenant predicate returns only that tenant's rows; a match-none predicate returns nothing.
// Test Case ID: STO-01
func TestFormRepository_Filter(t *testing.T) {
	repo := New().Forms()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &form.Form{ID: "f1", TenantID: "t1", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &form.Form{ID: "f2", TenantID: "t1", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, repo.Create(ctx, &form.Form{ID: "f3", TenantID: "t2", CreatedAt: now}))

	got, err := repo.Find(ctx, authz.Where(authz.Equals(authz.FieldTenant, "t1")))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "f1", got[0].ID)

	got, err = repo.Find(ctx, authz.Where(authz.MatchNone()))
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSubmissionRepository(t *testing.T) {
	s := New()
	ctx := context.Background()

	sub := &submission.Submission{ID: "s1", FormID: "f1", TenantID: "t1", Data: submission.Data{"email": "a@b.com"}}
	assert.ErrorIs(t, s.Submissions().Create(ctx, sub), form.ErrFormNotFound)

	require.NoError(t, s.Forms().Create(ctx, &form.Form{ID: "f1", TenantID: "t1"}))
	require.NoError(t, s.Submissions().Create(ctx, sub))

	sub.Data["email"] = "mutated@b.com"
	got, err := s.Submissions().GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Data["email"])

	list, err := s.Submissions().Find(ctx, authz.Where(authz.Equals(authz.FieldForm, "f1")))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Forms().Delete(ctx, "f1"))
	_, err = s.Submissions().GetByID(ctx, "s1")
	assert.ErrorIs(t, err, submission.ErrSubmissionNotFound)
}
