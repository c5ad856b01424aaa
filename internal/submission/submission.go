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

// Package submission records the answers submitted to a form. Every
// submission inherits its tenant from the form it answers.
package submission

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tenantforms/tenantforms/internal/apperr"
)

// Data maps a form field name to the submitted value.
type Data map[string]any

// Pair is the list encoding of one submitted value.
type Pair struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// FromPairs converts the list encoding of submission data into Data.
func FromPairs(pairs []Pair) (Data, error) {
	d := make(Data, len(pairs))
	for i, p := range pairs {
		if p.Field == "" {
			return nil, apperr.Validation("submission data entry %d has no field name", i)
		}
		if _, dup := d[p.Field]; dup {
			return nil, apperr.Validation("field %q submitted twice", p.Field)
		}
		d[p.Field] = p.Value
	}
	return d, nil
}

// ParseData decodes submission data sent either as an object keyed by field
// name or as a list of {field, value} pairs.
func ParseData(raw json.RawMessage) (Data, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apperr.Validation("submission data is required")
	}

	switch raw[0] {
	case '{':
		var d Data
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, apperr.Validation("malformed submission data")
		}
		return d, nil
	case '[':
		var pairs []Pair
		if err := json.Unmarshal(raw, &pairs); err != nil {
			return nil, apperr.Validation("malformed submission data")
		}
		return FromPairs(pairs)
	}
	return nil, apperr.Validation("submission data must be an object or a list")
}

// Submission is one set of answers to a form.
type Submission struct {
	ID                 string    `json:"id"`
	FormID             string    `json:"form"`
	TenantID           string    `json:"tenant"`
	Data               Data      `json:"submissionData"`
	SubmittedAt        time.Time `json:"submittedAt"`
	SubmitterIP        string    `json:"submitterIP,omitempty"`
	SubmitterUserAgent string    `json:"submitterUserAgent,omitempty"`
}

// FieldValue implements authz.Record.
func (s *Submission) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return s.ID, true
	case "form":
		return s.FormID, true
	case "tenant":
		return s.TenantID, true
	}
	return "", false
}
