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

package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/tenantforms/tenantforms/internal/apperr"
	"github.com/tenantforms/tenantforms/internal/audit"
	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/id"
	"github.com/tenantforms/tenantforms/internal/identity"
)

const msgNotFound = "User not found"

// CreateInput carries a new account. Role and Tenant are only honoured for
// super-admin callers; a tenant-admin always creates plain users in their
// own tenant.
type CreateInput struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Role      identity.Role `json:"role"`
	TenantID  string        `json:"tenant"`
}

// UpdateInput is a partial account update. Nil fields are left as is.
type UpdateInput struct {
	Email     *string        `json:"email"`
	Password  *string        `json:"password"`
	FirstName *string        `json:"firstName"`
	LastName  *string        `json:"lastName"`
	Role      *identity.Role `json:"role"`
	TenantID  *string        `json:"tenant"`
}

func (in UpdateInput) fields() []string {
	var out []string
	if in.Email != nil {
		out = append(out, "email")
	}
	if in.Password != nil {
		out = append(out, "password")
	}
	if in.FirstName != nil {
		out = append(out, "firstName")
	}
	if in.LastName != nil {
		out = append(out, "lastName")
	}
	if in.Role != nil {
		out = append(out, "role")
	}
	if in.TenantID != nil {
		out = append(out, "tenant")
	}
	return out
}

// Service provides user management and authentication
type Service struct {
	repo        Repository
	hasher      *PasswordHasher
	auditLogger audit.Logger
	now         func() time.Time
}

// NewService creates a new user service
func NewService(repo Repository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// CreateUser provisions a new account on behalf of caller.
func (s *Service) CreateUser(ctx context.Context, caller identity.Identity, in CreateInput) (*User, error) {
	decision := authz.Evaluate(caller, authz.EntityUsers, authz.OpCreate)
	if !decision.Allowed() {
		return nil, s.denied(ctx, caller, "", authz.OpCreate)
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if !isStrongPassword(in.Password) {
		return nil, apperr.Validation("%s", ErrWeakPassword.Error())
	}

	role, tenantID := identity.RoleUser, caller.TenantID
	if caller.IsSuperAdmin() {
		if in.Role != "" {
			role = in.Role
		}
		tenantID = strings.TrimSpace(in.TenantID)
	}
	if !role.Valid() || role == identity.RoleNone {
		return nil, apperr.Validation("invalid role %q", role)
	}
	if role != identity.RoleSuperAdmin && tenantID == "" {
		return nil, apperr.Validation("tenant is required for role %s", role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Infrastructure("failed to hash password", err)
	}

	now := s.now().UTC()
	u := &User{
		ID:           id.NewUUIDv7(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		TenantID:     tenantID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !decision.Permits(u) {
		return nil, s.denied(ctx, caller, tenantID, authz.OpCreate)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: u.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceUser,
		Metadata: map[string]any{
			audit.AttrEmail: u.Email,
			audit.AttrRole:  string(u.Role),
		},
	})
	return u, nil
}

// Authenticate authenticates a user with email and password. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, apperr.Infrastructure("user store", err)
		}
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: audit.ResourceUser,
			Metadata: map[string]any{
				audit.AttrEmail:  email,
				audit.AttrReason: "user_not_found",
			},
		})
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil || !valid {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: u.TenantID,
			ActorID:  u.ID,
			Resource: audit.ResourceUser,
			Metadata: map[string]any{audit.AttrReason: "invalid_password"},
		})
		return nil, ErrInvalidCredentials
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: u.TenantID,
		ActorID:  u.ID,
		Resource: audit.ResourceUser,
	})
	return u, nil
}

// GetUser retrieves a user by ID. Users other than the caller are reported
// as not found unless the caller is a super-admin.
func (s *Service) GetUser(ctx context.Context, caller identity.Identity, userID string) (*User, error) {
	decision := authz.Evaluate(caller, authz.EntityUsers, authz.OpRead)
	if !decision.Allowed() {
		return nil, s.denied(ctx, caller, "", authz.OpRead)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if !decision.Permits(u) {
		return nil, apperr.NotFound(msgNotFound, ErrUserNotFound)
	}
	return u, nil
}

// ListUsers lists the users visible to caller that match filter.
func (s *Service) ListUsers(ctx context.Context, caller identity.Identity, filter authz.Filter) ([]*User, error) {
	scoped, err := authz.Evaluate(caller, authz.EntityUsers, authz.OpRead).Apply(filter)
	if err != nil {
		return nil, s.denied(ctx, caller, "", authz.OpRead)
	}
	if scoped.MatchesNothing() {
		return []*User{}, nil
	}

	users, err := s.repo.List(ctx, scoped)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// UpdateUser applies a partial update. Supplying a field the caller may not
// write is an access error, not a silent no-op.
func (s *Service) UpdateUser(ctx context.Context, caller identity.Identity, userID string, in UpdateInput) (*User, error) {
	u, err := s.GetUser(ctx, caller, userID)
	if err != nil {
		return nil, err
	}
	if !authz.Evaluate(caller, authz.EntityUsers, authz.OpUpdate).Permits(u) {
		return nil, s.denied(ctx, caller, u.TenantID, authz.OpUpdate)
	}
	for _, f := range in.fields() {
		if !authz.CanWrite(caller, authz.EntityUsers, f) {
			return nil, s.denied(ctx, caller, u.TenantID, authz.OpUpdate)
		}
	}

	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if in.Password != nil {
		if !isStrongPassword(*in.Password) {
			return nil, apperr.Validation("%s", ErrWeakPassword.Error())
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperr.Infrastructure("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil {
		if !in.Role.Valid() || *in.Role == identity.RoleNone {
			return nil, apperr.Validation("invalid role %q", *in.Role)
		}
		u.Role = *in.Role
	}
	if in.TenantID != nil {
		u.TenantID = strings.TrimSpace(*in.TenantID)
	}
	if u.Role != identity.RoleSuperAdmin && u.TenantID == "" {
		return nil, apperr.Validation("tenant is required for role %s", u.Role)
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserUpdated,
		TenantID: u.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceUser,
		Metadata: map[string]any{"fields": in.fields()},
	})
	return u, nil
}

// DeleteUser removes an account. Non-super-admins may only delete their own.
func (s *Service) DeleteUser(ctx context.Context, caller identity.Identity, userID string) error {
	u, err := s.GetUser(ctx, caller, userID)
	if err != nil {
		return err
	}
	if !authz.Evaluate(caller, authz.EntityUsers, authz.OpDelete).Permits(u) {
		return s.denied(ctx, caller, u.TenantID, authz.OpDelete)
	}
	if err := s.repo.Delete(ctx, u.ID); err != nil {
		return storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserDeleted,
		TenantID: u.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceUser,
		Metadata: map[string]any{audit.AttrEmail: u.Email},
	})
	return nil
}

func (s *Service) denied(ctx context.Context, caller identity.Identity, tenantID string, op authz.Operation) error {
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccessDenied,
		TenantID: tenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceUser,
		Metadata: map[string]any{
			audit.AttrOperation: string(op),
			audit.AttrRole:      string(caller.EffectiveRole()),
		},
	})
	return apperr.AccessDenied("You are not allowed to perform this action", authz.ErrAccessDenied)
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return apperr.NotFound(msgNotFound, err)
	case errors.Is(err, ErrUserAlreadyExists):
		return apperr.Conflict(ErrUserAlreadyExists.Error(), err)
	case errors.Is(err, ErrUnknownTenant):
		return &apperr.Error{Kind: apperr.KindValidation, Message: ErrUnknownTenant.Error(), Cause: err}
	}
	return apperr.Infrastructure("user store", err)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > 254 {
		return "", apperr.Validation("invalid email address %q", email)
	}
	return email, nil
}

func isStrongPassword(password string) bool {
	return len(password) >= 8
}
