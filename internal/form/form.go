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

// Package form holds tenant-owned form definitions and the rules for
// creating and changing them.
package form

import (
	"time"

	"github.com/tenantforms/tenantforms/internal/apperr"
)

// DefaultConfirmation is shown after a submission when the form has no
// confirmation message of its own.
const DefaultConfirmation = "Thank you for your submission!"

// FieldType is the input kind of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldTextarea, FieldNumber, FieldCheckbox, FieldSelect:
		return true
	}
	return false
}

// ConfirmationType selects what a submitter sees after submitting.
type ConfirmationType string

const (
	ConfirmMessage  ConfirmationType = "message"
	ConfirmRedirect ConfirmationType = "redirect"
)

// Option is one choice of a select field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Field describes one input of a form.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
}

// Redirect is the target of a redirect confirmation.
type Redirect struct {
	URL string `json:"url"`
}

// EmailNotification is sent when the form receives a submission.
type EmailNotification struct {
	EmailTo      string `json:"emailTo"`
	EmailFrom    string `json:"emailFrom,omitempty"`
	ReplyTo      string `json:"replyTo,omitempty"`
	EmailSubject string `json:"emailSubject,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Form is a tenant-owned form definition.
type Form struct {
	ID                  string              `json:"id"`
	Title               string              `json:"title"`
	TenantID            string              `json:"tenant"`
	Fields              []Field             `json:"fields"`
	ConfirmationType    ConfirmationType    `json:"confirmationType"`
	ConfirmationMessage string              `json:"confirmationMessage,omitempty"`
	Redirect            *Redirect           `json:"redirect,omitempty"`
	Emails              []EmailNotification `json:"emails,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// FieldValue implements authz.Record.
func (f *Form) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return f.ID, true
	case "tenant":
		return f.TenantID, true
	case "title":
		return f.Title, true
	}
	return "", false
}

// Field returns the field descriptor with the given name.
func (f *Form) Field(name string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// Validate checks the structural invariants of a form definition.
func (f *Form) Validate() error {
	if f.Title == "" {
		return apperr.Validation("form title is required")
	}
	if f.TenantID == "" {
		return apperr.Validation("form tenant is required")
	}
	if len(f.Fields) == 0 {
		return apperr.Validation("form must have at least one field")
	}

	seen := make(map[string]struct{}, len(f.Fields))
	for i, fd := range f.Fields {
		if fd.Name == "" {
			return apperr.Validation("field %d: name is required", i)
		}
		if _, dup := seen[fd.Name]; dup {
			return apperr.Validation("duplicate field name %q", fd.Name)
		}
		seen[fd.Name] = struct{}{}

		if fd.Label == "" {
			return apperr.Validation("field %q: label is required", fd.Name)
		}
		if !fd.Type.Valid() {
			return apperr.Validation("field %q: unknown type %q", fd.Name, fd.Type)
		}
		if fd.Type == FieldSelect && len(fd.Options) == 0 {
			return apperr.Validation("field %q: select requires options", fd.Name)
		}
		for _, o := range fd.Options {
			if o.Label == "" || o.Value == "" {
				return apperr.Validation("field %q: options need a label and a value", fd.Name)
			}
		}
	}

	switch f.ConfirmationType {
	case ConfirmMessage:
	case ConfirmRedirect:
		if f.Redirect == nil || f.Redirect.URL == "" {
			return apperr.Validation("redirect confirmation requires a url")
		}
	default:
		return apperr.Validation("unknown confirmation type %q", f.ConfirmationType)
	}

	for _, e := range f.Emails {
		if e.EmailTo == "" {
			return apperr.Validation("email notification requires emailTo")
		}
	}
	return nil
}

// ConfirmationText returns the message shown after a successful submission.
func ConfirmationText(f *Form) string {
	if f.ConfirmationMessage != "" {
		return f.ConfirmationMessage
	}
	return DefaultConfirmation
}

// RedirectURL returns the redirect target of a redirect confirmation, or
// "" for message confirmations.
func RedirectURL(f *Form) string {
	if f.ConfirmationType == ConfirmRedirect && f.Redirect != nil {
		return f.Redirect.URL
	}
	return ""
}
