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

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/tenantforms/tenantforms/internal/tenant"
)

const tenantSlugPrefix = "tenant:slug:"

// TenantRepository serves GetBySlug through a cache and invalidates the
// cached entry when a tenant changes. Every other call goes straight to the
// wrapped repository. Cache failures are logged and never fail a request.
type TenantRepository struct {
	tenant.Repository
	cache Cache
	ttl   time.Duration
}

// NewTenantRepository wraps repo.
func NewTenantRepository(repo tenant.Repository, c Cache, ttl time.Duration) *TenantRepository {
	return &TenantRepository{Repository: repo, cache: c, ttl: ttl}
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	key := tenantSlugPrefix + slug

	raw, err := r.cache.Get(ctx, key)
	if err == nil {
		var t tenant.Tenant
		if jerr := json.Unmarshal([]byte(raw), &t); jerr == nil {
			return &t, nil
		}
		_ = r.cache.Del(ctx, key)
	} else if !errors.Is(err, ErrMiss) {
		slog.WarnContext(ctx, "tenant cache read failed", slog.String("slug", slug), slog.String("error", err.Error()))
	}

	t, err := r.Repository.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(t); err == nil {
		if err := r.cache.Set(ctx, key, string(b), r.ttl); err != nil {
			slog.WarnContext(ctx, "tenant cache write failed", slog.String("slug", slug), slog.String("error", err.Error()))
		}
	}
	return t, nil
}

func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	keys := []string{tenantSlugPrefix + t.Slug}
	if old, err := r.Repository.GetByID(ctx, t.ID); err == nil && old.Slug != t.Slug {
		keys = append(keys, tenantSlugPrefix+old.Slug)
	}
	if err := r.Repository.Update(ctx, t); err != nil {
		return err
	}
	r.invalidate(ctx, keys...)
	return nil
}

func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	old, lookupErr := r.Repository.GetByID(ctx, id)
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	if lookupErr == nil {
		r.invalidate(ctx, tenantSlugPrefix+old.Slug)
	}
	return nil
}

func (r *TenantRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Del(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "tenant cache invalidation failed", slog.String("error", err.Error()))
	}
}
