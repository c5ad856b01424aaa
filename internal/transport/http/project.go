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
	"encoding/json"
	"fmt"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/identity"
)

// publicFormHidden lists form fields never served to anonymous callers.
var publicFormHidden = map[string]bool{"emails": true}

// project renders v as a JSON object restricted to the fields caller may
// see on entity.
func project(caller identity.Identity, entity authz.Entity, v any) (map[string]any, error) {
	return projectFields(authz.VisibleFields(caller, entity), nil, v)
}

// projectAll applies project to each element of items.
func projectAll[T any](caller identity.Identity, entity authz.Entity, items []T) ([]map[string]any, error) {
	fields := authz.VisibleFields(caller, entity)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, err := projectFields(fields, nil, item)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func projectFields(fields []string, hidden map[string]bool, v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	var full map[string]any
	if err := json.Unmarshal(raw, &full); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if hidden[f] {
			continue
		}
		if val, ok := full[f]; ok {
			out[f] = val
		}
	}
	return out, nil
}
