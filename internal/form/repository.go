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

package form

import (
	"context"
	"errors"

	"github.com/tenantforms/tenantforms/internal/authz"
)

var ErrFormNotFound = errors.New("form not found")

// Repository defines the interface for form storage
type Repository interface {
	Create(ctx context.Context, form *Form) error
	GetByID(ctx context.Context, id string) (*Form, error)
	Update(ctx context.Context, form *Form) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter authz.Filter) ([]*Form, error)
	Count(ctx context.Context, filter authz.Filter) (int, error)
}
