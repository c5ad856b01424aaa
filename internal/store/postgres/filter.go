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

package postgres

import (
	"fmt"
	"strings"

	"github.com/tenantforms/tenantforms/internal/authz"
)

// columns maps the fields a predicate may name to SQL columns.
type columns map[string]string

// where renders filter as a parameterized WHERE clause whose placeholders
// start at $start. An empty filter renders as "TRUE" and a match-none
// predicate as "FALSE".
func (c columns) where(filter authz.Filter, start int) (string, []any, error) {
	if len(filter) == 0 {
		return "TRUE", nil, nil
	}

	parts := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))
	for _, p := range filter {
		if p.IsNone() {
			return "FALSE", nil, nil
		}
		col, ok := c[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("field %q cannot be filtered", p.Field)
		}
		args = append(args, p.Value)
		parts = append(parts, fmt.Sprintf("%s = $%d", col, start+len(args)-1))
	}
	return strings.Join(parts, " AND "), args, nil
}
