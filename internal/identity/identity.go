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

// Package identity defines the Identity Context: who is calling, with which
// role, on behalf of which tenant. It is produced by the auth middleware and
// passed explicitly to every policy and hook function.
package identity

// Identity is the authenticated caller of an operation.
type Identity struct {
	UserID   string
	Email    string
	Role     Role
	TenantID string
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{Role: RoleNone}
}

// IsAnonymous reports whether the caller carries no authenticated user.
func (i Identity) IsAnonymous() bool {
	return i.UserID == "" || i.Role == "" || i.Role == RoleNone
}

// IsSuperAdmin reports whether the caller bypasses tenant scoping.
func (i Identity) IsSuperAdmin() bool {
	return !i.IsAnonymous() && i.Role == RoleSuperAdmin
}

// HasTenant reports whether the caller is attached to a tenant.
func (i Identity) HasTenant() bool {
	return i.TenantID != ""
}

// EffectiveRole is the role the policy evaluator sees. Identities without a
// user behind them are always RoleNone, whatever role they claim.
func (i Identity) EffectiveRole() Role {
	if i.IsAnonymous() {
		return RoleNone
	}
	return i.Role
}
