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

// Package memory implements every repository in process. It backs the
// memory store driver and the transport tests, and enforces the same
// uniqueness and reference rules as the PostgreSQL schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/submission"
	"github.com/tenantforms/tenantforms/internal/tenant"
	"github.com/tenantforms/tenantforms/internal/user"
)

// Store holds all records behind a single lock.
type Store struct {
	mu          sync.RWMutex
	tenants     map[string]*tenant.Tenant
	users       map[string]*user.User
	forms       map[string]*form.Form
	submissions map[string]*submission.Submission
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tenants:     make(map[string]*tenant.Tenant),
		users:       make(map[string]*user.User),
		forms:       make(map[string]*form.Form),
		submissions: make(map[string]*submission.Submission),
	}
}

// Tenants returns the tenant repository.
func (s *Store) Tenants() *TenantRepository { return &TenantRepository{s: s} }

// Users returns the user repository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Forms returns the form repository.
func (s *Store) Forms() *FormRepository { return &FormRepository{s: s} }

// Submissions returns the submission repository.
func (s *Store) Submissions() *SubmissionRepository { return &SubmissionRepository{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func matchAll[T authz.Record](items map[string]T, filter authz.Filter, clone func(T) T) []T {
	out := make([]T, 0)
	if filter.MatchesNothing() {
		return out
	}
	for _, item := range items {
		if filter.Matches(item) {
			out = append(out, clone(item))
		}
	}
	return out
}

// TenantRepository implements tenant.Repository.
type TenantRepository struct{ s *Store }

func cloneTenant(t *tenant.Tenant) *tenant.Tenant {
	c := *t
	return &c
}

func (r *TenantRepository) Create(_ context.Context, t *tenant.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflictLocked(t) {
		return tenant.ErrTenantAlreadyExists
	}
	r.s.tenants[t.ID] = cloneTenant(t)
	return nil
}

func (r *TenantRepository) conflictLocked(t *tenant.Tenant) bool {
	for _, existing := range r.s.tenants {
		if existing.ID == t.ID {
			continue
		}
		if existing.Slug == t.Slug || strings.EqualFold(existing.Name, t.Name) {
			return true
		}
	}
	return false
}

func (r *TenantRepository) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return cloneTenant(t), nil
}

func (r *TenantRepository) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tenants {
		if t.Slug == slug {
			return cloneTenant(t), nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (r *TenantRepository) Update(_ context.Context, t *tenant.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[t.ID]; !ok {
		return tenant.ErrTenantNotFound
	}
	if r.conflictLocked(t) {
		return tenant.ErrTenantAlreadyExists
	}
	r.s.tenants[t.ID] = cloneTenant(t)
	return nil
}

func (r *TenantRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[id]; !ok {
		return tenant.ErrTenantNotFound
	}
	for _, u := range r.s.users {
		if u.TenantID == id {
			return tenant.ErrTenantInUse
		}
	}
	for _, f := range r.s.forms {
		if f.TenantID == id {
			return tenant.ErrTenantInUse
		}
	}
	delete(r.s.tenants, id)
	return nil
}

func (r *TenantRepository) List(_ context.Context, filter authz.Filter) ([]*tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := matchAll(r.s.tenants, filter, cloneTenant)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UserRepository implements user.Repository.
type UserRepository struct{ s *Store }

func cloneUser(u *user.User) *user.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTakenLocked(u) {
		return user.ErrUserAlreadyExists
	}
	if !r.tenantExistsLocked(u.TenantID) {
		return user.ErrUnknownTenant
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) tenantExistsLocked(id string) bool {
	if id == "" {
		return true
	}
	_, ok := r.s.tenants[id]
	return ok
}

func (r *UserRepository) emailTakenLocked(u *user.User) bool {
	for _, existing := range r.s.users {
		if existing.ID != u.ID && existing.Email == u.Email {
			return true
		}
	}
	return false
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	if r.emailTakenLocked(u) {
		return user.ErrUserAlreadyExists
	}
	if !r.tenantExistsLocked(u.TenantID) {
		return user.ErrUnknownTenant
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) List(_ context.Context, filter authz.Filter) ([]*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := matchAll(r.s.users, filter, cloneUser)
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// FormRepository implements form.Repository.
type FormRepository struct{ s *Store }

func cloneForm(f *form.Form) *form.Form {
	c := *f
	c.Fields = append([]form.Field(nil), f.Fields...)
	c.Emails = append([]form.EmailNotification(nil), f.Emails...)
	if f.Redirect != nil {
		r := *f.Redirect
		c.Redirect = &r
	}
	return &c
}

func (r *FormRepository) Create(_ context.Context, f *form.Form) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.forms[f.ID] = cloneForm(f)
	return nil
}

func (r *FormRepository) GetByID(_ context.Context, id string) (*form.Form, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.forms[id]
	if !ok {
		return nil, form.ErrFormNotFound
	}
	return cloneForm(f), nil
}

func (r *FormRepository) Update(_ context.Context, f *form.Form) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.forms[f.ID]; !ok {
		return form.ErrFormNotFound
	}
	r.s.forms[f.ID] = cloneForm(f)
	return nil
}

// Delete removes a form and its submissions.
func (r *FormRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.forms[id]; !ok {
		return form.ErrFormNotFound
	}
	delete(r.s.forms, id)
	for sid, sub := range r.s.submissions {
		if sub.FormID == id {
			delete(r.s.submissions, sid)
		}
	}
	return nil
}

func (r *FormRepository) Find(_ context.Context, filter authz.Filter) ([]*form.Form, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := matchAll(r.s.forms, filter, cloneForm)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *FormRepository) Count(ctx context.Context, filter authz.Filter) (int, error) {
	forms, err := r.Find(ctx, filter)
	return len(forms), err
}

// SubmissionRepository implements submission.Repository.
type SubmissionRepository struct{ s *Store }

func cloneSubmission(sub *submission.Submission) *submission.Submission {
	c := *sub
	c.Data = make(submission.Data, len(sub.Data))
	for k, v := range sub.Data {
		c.Data[k] = v
	}
	return &c
}

// Create stores a submission. Like the foreign keys of the SQL schema, it
// refuses a submission whose form does not exist.
func (r *SubmissionRepository) Create(_ context.Context, sub *submission.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.forms[sub.FormID]; !ok {
		return form.ErrFormNotFound
	}
	r.s.submissions[sub.ID] = cloneSubmission(sub)
	return nil
}

func (r *SubmissionRepository) GetByID(_ context.Context, id string) (*submission.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, submission.ErrSubmissionNotFound
	}
	return cloneSubmission(sub), nil
}

func (r *SubmissionRepository) Update(_ context.Context, sub *submission.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.submissions[sub.ID]; !ok {
		return submission.ErrSubmissionNotFound
	}
	r.s.submissions[sub.ID] = cloneSubmission(sub)
	return nil
}

func (r *SubmissionRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.submissions[id]; !ok {
		return submission.ErrSubmissionNotFound
	}
	delete(r.s.submissions, id)
	return nil
}

func (r *SubmissionRepository) Find(_ context.Context, filter authz.Filter) ([]*submission.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := matchAll(r.s.submissions, filter, cloneSubmission)
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

var (
	_ tenant.Repository     = (*TenantRepository)(nil)
	_ user.Repository       = (*UserRepository)(nil)
	_ form.Repository       = (*FormRepository)(nil)
	_ submission.Repository = (*SubmissionRepository)(nil)
)
