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

package submission

import (
	"context"
	"errors"
	"time"

	"github.com/tenantforms/tenantforms/internal/apperr"
	"github.com/tenantforms/tenantforms/internal/form"
)

// FormResolver looks up the form a submission answers.
type FormResolver interface {
	GetByID(ctx context.Context, id string) (*form.Form, error)
}

// PropagateTenant runs before a submission is first persisted. It resolves
// the referenced form, overwrites the submission's tenant with the form's
// tenant whatever the client sent, and stamps the submission time. Any
// failure to resolve the form fails the submission.
func PropagateTenant(ctx context.Context, resolver FormResolver, s *Submission, now func() time.Time) (*form.Form, error) {
	if s.FormID == "" {
		return nil, apperr.Validation("form reference required")
	}

	f, err := resolver.GetByID(ctx, s.FormID)
	if err != nil {
		if errors.Is(err, form.ErrFormNotFound) {
			return nil, apperr.NotFound("Form not found", err)
		}
		return nil, apperr.Infrastructure("resolve form", err)
	}
	if f.TenantID == "" {
		return nil, apperr.Infrastructure("resolve form", errors.New("form has no tenant"))
	}

	s.TenantID = f.TenantID
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = now().UTC()
	}
	return f, nil
}
