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

import "fmt"

// Role is the caller's platform role.
type Role string

const (
	// RoleSuperAdmin sees every tenant and bypasses tenant scoping.
	RoleSuperAdmin Role = "super-admin"

	// RoleTenantAdmin manages forms and submissions of exactly one tenant.
	RoleTenantAdmin Role = "tenant-admin"

	// RoleUser is a tenant member with read access to its own tenant.
	RoleUser Role = "user"

	// RoleNone is the role of an anonymous caller.
	RoleNone Role = "none"
)

// Roles lists the roles that can be assigned to a stored user.
var Roles = []Role{RoleSuperAdmin, RoleTenantAdmin, RoleUser}

// ParseRole parses an assignable role name.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("invalid role: %q", s)
}

// Valid reports whether r can be assigned to a stored user.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
