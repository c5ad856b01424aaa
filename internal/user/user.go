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

// Package user manages the accounts that sign in to the admin API.
package user

import (
	"time"

	"github.com/tenantforms/tenantforms/internal/identity"
)

// User is an admin API account. Super-admins carry no tenant; every other
// role is attached to exactly one.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	FirstName    string        `json:"firstName,omitempty"`
	LastName     string        `json:"lastName,omitempty"`
	Role         identity.Role `json:"role"`
	TenantID     string        `json:"tenant,omitempty"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// FieldValue implements authz.Record.
func (u *User) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return u.ID, true
	case "email":
		return u.Email, true
	case "tenant":
		return u.TenantID, true
	case "role":
		return string(u.Role), true
	}
	return "", false
}

// Identity returns the identity context of a signed-in user.
func (u *User) Identity() identity.Identity {
	return identity.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	}
}
