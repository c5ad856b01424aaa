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

package http

import (
	"context"

	"github.com/tenantforms/tenantforms/internal/identity"
)

type contextKey string

const (
	identityKey    contextKey = "identity"
	requestInfoKey contextKey = "request_info"
)

// requestInfo lets outer middleware see values resolved further down the
// chain once the handler returns.
type requestInfo struct {
	caller identity.Identity
}

// withIdentity stores the caller resolved by IdentityMiddleware.
func withIdentity(ctx context.Context, id identity.Identity) context.Context {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.caller = id
	}
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity retrieves the caller from context. Requests that did not pass
// through IdentityMiddleware are anonymous.
func GetIdentity(ctx context.Context) identity.Identity {
	if val, ok := ctx.Value(identityKey).(identity.Identity); ok {
		return val
	}
	return identity.Anonymous()
}
