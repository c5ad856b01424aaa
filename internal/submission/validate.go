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
	"encoding/json"
	"net/mail"
	"strconv"
	"strings"

	"github.com/tenantforms/tenantforms/internal/apperr"
	"github.com/tenantforms/tenantforms/internal/form"
)

// ValidateData checks submitted values against the form's field
// descriptors. Required fields must carry a non-empty value; keys the form
// does not declare are kept as submitted.
func ValidateData(f *form.Form, d Data) error {
	for _, fd := range f.Fields {
		v, present := d[fd.Name]
		if !present || isEmpty(v) {
			if fd.Required {
				return apperr.Validation("%s is required", fd.Label)
			}
			continue
		}
		if err := validateValue(fd, v); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(fd form.Field, v any) error {
	switch fd.Type {
	case form.FieldText, form.FieldTextarea:
		if _, ok := v.(string); !ok {
			return apperr.Validation("%s must be text", fd.Label)
		}
	case form.FieldEmail:
		s, ok := v.(string)
		if !ok {
			return apperr.Validation("%s must be an email address", fd.Label)
		}
		if addr, err := mail.ParseAddress(s); err != nil || addr.Address != strings.TrimSpace(s) {
			return apperr.Validation("%s must be an email address", fd.Label)
		}
	case form.FieldNumber:
		if !isNumber(v) {
			return apperr.Validation("%s must be a number", fd.Label)
		}
	case form.FieldCheckbox:
		b, ok := asBool(v)
		if !ok {
			return apperr.Validation("%s must be true or false", fd.Label)
		}
		if fd.Required && !b {
			return apperr.Validation("%s is required", fd.Label)
		}
	case form.FieldSelect:
		s, ok := v.(string)
		if !ok || !hasOption(fd, s) {
			return apperr.Validation("%s has an invalid choice", fd.Label)
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func isNumber(v any) bool {
	switch t := v.(type) {
	case float64, float32, int, int64, json.Number:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return err == nil
	}
	return false
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(t) {
		case "true", "on", "yes":
			return true, true
		case "false", "off", "no":
			return false, true
		}
	}
	return false, false
}

func hasOption(fd form.Field, value string) bool {
	for _, o := range fd.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}
