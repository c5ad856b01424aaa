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

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("form not found")

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("form reference required"), KindValidation},
		{"wrapped not found", fmt.Errorf("lookup: %w", NotFound("Form not found", errSentinel)), KindNotFound},
		{"denied", AccessDenied("denied", nil), KindAccessDenied},
		{"plain error", errors.New("boom"), KindInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_UnwrapAndIs(t *testing.T) {
	err := NotFound("Form not found", errSentinel)

	assert.ErrorIs(t, err, errSentinel)
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound})
	assert.NotErrorIs(t, err, &Error{Kind: KindValidation})
	assert.Equal(t, "Form not found", MessageOf(err))
	assert.Equal(t, "", MessageOf(errSentinel))
}
