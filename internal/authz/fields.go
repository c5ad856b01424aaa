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

var formFields = []string{
	"id", "title", "fields", "confirmationType", "confirmationMessage",
	"redirect", "emails", "createdAt", "updatedAt",
}

var userFields = []string{"id", "email", "firstName", "lastName", "createdAt", "updatedAt"}

var submissionFields = []string{
	"id", "form", "tenant", "submissionData", "submittedAt",
	"submitterIP", "submitterUserAgent",
}

var tenantFields = []string{"id", "name", "slug", "domain", "isActive", "settings", "createdAt", "updatedAt"}

// VisibleFields returns the fields of entity the caller may see and supply.
// The tenant reference of forms and the role and tenant of users are only
// exposed to super-admins; everyone else has them assigned by the system.
func VisibleFields(caller identity.Identity, entity Entity) []string {
	switch entity {
	case EntityForms:
		if caller.IsSuperAdmin() {
			return append(clone(formFields), FieldTenant)
		}
		return clone(formFields)
	case EntityUsers:
		if caller.IsSuperAdmin() {
			return append(clone(userFields), "role", FieldTenant)
		}
		return append(clone(userFields), "role")
	case EntitySubmissions:
		return clone(submissionFields)
	case EntityTenants:
		return clone(tenantFields)
	}
	return nil
}

// WritableFields returns the subset of VisibleFields that the caller may
// change on update.
func WritableFields(caller identity.Identity, entity Entity) []string {
	switch entity {
	case EntityForms:
		return []string{"title", "fields", "confirmationType", "confirmationMessage", "redirect", "emails"}
	case EntityUsers:
		if caller.IsSuperAdmin() {
			return []string{"email", "firstName", "lastName", "password", "role", FieldTenant}
		}
		return []string{"firstName", "lastName", "password"}
	case EntitySubmissions:
		return []string{"submissionData"}
	case EntityTenants:
		if caller.IsSuperAdmin() {
			return []string{"name", "slug", "domain", "isActive", "settings"}
		}
	}
	return nil
}

// CanWrite reports whether field is writable by caller on entity.
func CanWrite(caller identity.Identity, entity Entity, field string) bool {
	for _, f := range WritableFields(caller, entity) {
		if f == field {
			return true
		}
	}
	return false
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
