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

package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantforms/tenantforms/internal/audit"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/identity"
	"github.com/tenantforms/tenantforms/internal/store/memory"
	"github.com/tenantforms/tenantforms/internal/submission"
	"github.com/tenantforms/tenantforms/internal/tenant"
	"github.com/tenantforms/tenantforms/internal/user"
)

type services struct {
	store   *memory.Store
	users   *user.Service
	forms   *form.Service
	seeder  *Seeder
	submits *submission.Service
}

func newServices() services {
	st := memory.New()
	a := audit.NewSlogLoggerWith(slog.New(slog.NewTextHandler(io.Discard, nil)))
	tenants := tenant.NewService(st.Tenants(), a)
	users := user.NewService(st.Users(), user.NewPasswordHasher(1024, 1, 1, 16, 32), a)
	forms := form.NewService(st.Forms(), st.Tenants(), a)
	return services{
		store:   st,
		users:   users,
		forms:   forms,
		seeder:  New(tenants, users, forms, slog.New(slog.NewTextHandler(io.Discard, nil))),
		submits: submission.NewService(st.Submissions(), st.Forms(), a, time.Second),
	}
}

// TestPurpose: Validates that the demo seed is complete and idempotent.
// Scope: Unit Test
// Security: N/A
// Expected: A second run creates nothing and returns the same ids.
// Test Case ID: SEED-01
func TestSeeder_Idempotent(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	first, err := s.seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Created)

	second, err := s.seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, first.TenantID, second.TenantID)
	assert.Equal(t, first.ContactFormID, second.ContactFormID)
	assert.Equal(t, first.TenantAdminID, second.TenantAdminID)
}

func TestSeeder_DemoDataIsUsable(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	res, err := s.seeder.Run(ctx)
	require.NoError(t, err)

	admin, err := s.users.Authenticate(ctx, TenantAdminEmail, TenantAdminPass)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleTenantAdmin, admin.Role)
	assert.Equal(t, res.TenantID, admin.TenantID)

	super, err := s.users.Authenticate(ctx, SuperAdminEmail, SuperAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleSuperAdmin, super.Role)
	assert.Empty(t, super.TenantID)

	receipt, err := s.submits.Submit(ctx, identity.Anonymous(), submission.SubmitInput{
		FormID: res.ContactFormID,
		Data: submission.Data{
			"fullName": "Ada Lovelace",
			"email":    "ada@example.com",
			"subject":  "Hello",
			"message":  "Hi there",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, res.TenantID, receipt.Submission.TenantID)
	assert.Equal(t, ContactFormMessage, receipt.Message)
}
