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

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"super-admin", RoleSuperAdmin, false},
		{"tenant-admin", RoleTenantAdmin, false},
		{"user", RoleUser, false},
		{"none", RoleNone, true},
		{"platform_admin", RoleNone, true},
		{"", RoleNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPurpose: Validates that an identity without a user id never acts with a privileged role.
// Scope: Unit Test
// Security: Privilege escalation through forged role claims
// Expected: EffectiveRole is none for any identity lacking a user id.
// Test Case ID: IDN-01
func TestIdentity_EffectiveRole_RequiresUser(t *testing.T) {
	forged := Identity{Role: RoleSuperAdmin}
	assert.True(t, forged.IsAnonymous())
	assert.False(t, forged.IsSuperAdmin())
	assert.Equal(t, RoleNone, forged.EffectiveRole())

	admin := Identity{UserID: "u1", Role: RoleSuperAdmin}
	assert.True(t, admin.IsSuperAdmin())
	assert.Equal(t, RoleSuperAdmin, admin.EffectiveRole())

	assert.Equal(t, RoleNone, Anonymous().EffectiveRole())
	assert.False(t, Anonymous().HasTenant())
}
