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

package authz

import "github.com/tenantforms/tenantforms/internal/identity"

// Evaluate decides whether caller may perform op on entity. It is a pure
// function of its arguments: the same decision gates a single-record fetch
// and rewrites a multi-record query.
//
// Callers that are not super-admins are confined to their own tenant (or,
// for users, to their own record). Anonymous callers may only create form
// submissions.
func Evaluate(caller identity.Identity, entity Entity, op Operation) Decision {
	role := caller.EffectiveRole()

	switch entity {
	case EntityTenants:
		return evaluateTenants(caller, role, op)
	case EntityUsers:
		return evaluateUsers(caller, role, op)
	case EntityForms:
		return evaluateForms(caller, role, op)
	case EntitySubmissions:
		return evaluateSubmissions(caller, role, op)
	}
	return Denied()
}

func evaluateTenants(caller identity.Identity, role identity.Role, op Operation) Decision {
	if role == identity.RoleSuperAdmin {
		return Unconditional()
	}
	if role == identity.RoleNone {
		return Denied()
	}
	if op == OpRead {
		return Scoped(Equals(FieldID, caller.TenantID))
	}
	return Denied()
}

func evaluateUsers(caller identity.Identity, role identity.Role, op Operation) Decision {
	switch role {
	case identity.RoleSuperAdmin:
		return Unconditional()
	case identity.RoleNone:
		return Denied()
	}

	switch op {
	case OpCreate:
		if role == identity.RoleTenantAdmin {
			return Scoped(tenantScope(caller))
		}
		return Denied()
	case OpRead, OpUpdate, OpDelete:
		return Scoped(Equals(FieldID, caller.UserID))
	}
	return Denied()
}

func evaluateForms(caller identity.Identity, role identity.Role, op Operation) Decision {
	switch role {
	case identity.RoleSuperAdmin:
		return Unconditional()
	case identity.RoleNone:
		return Denied()
	}

	if op == OpCreate {
		if role == identity.RoleTenantAdmin {
			return Scoped(tenantScope(caller))
		}
		return Denied()
	}
	return Scoped(tenantScope(caller))
}

func evaluateSubmissions(caller identity.Identity, role identity.Role, op Operation) Decision {
	if op == OpCreate {
		return Unconditional()
	}
	switch role {
	case identity.RoleSuperAdmin:
		return Unconditional()
	case identity.RoleNone:
		return Denied()
	}
	return Scoped(tenantScope(caller))
}

func tenantScope(caller identity.Identity) Predicate {
	return Equals(FieldTenant, caller.TenantID)
}

// Check evaluates the policy for a single record and returns ErrAccessDenied
// when the record lies outside the caller's scope.
func Check(caller identity.Identity, entity Entity, op Operation, r Record) error {
	if !Evaluate(caller, entity, op).Permits(r) {
		return ErrAccessDenied
	}
	return nil
}
