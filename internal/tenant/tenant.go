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

package tenant

import (
	"regexp"
	"strings"
	"time"
)

// DefaultMaxForms is the form quota of a tenant created without settings.
const DefaultMaxForms = 10

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Tenant is an isolated customer partition. Every form and submission
// belongs to exactly one tenant.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Domain    string    `json:"domain,omitempty"`
	IsActive  bool      `json:"isActive"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Settings holds per-tenant limits on form management.
type Settings struct {
	AllowFormCreation bool `json:"allowFormCreation"`
	MaxForms          int  `json:"maxForms"`
}

// DefaultSettings returns the settings applied to new tenants.
func DefaultSettings() Settings {
	return Settings{AllowFormCreation: true, MaxForms: DefaultMaxForms}
}

// FieldValue implements authz.Record.
func (t *Tenant) FieldValue(field string) (string, bool) {
	switch field {
	case "id":
		return t.ID, true
	case "slug":
		return t.Slug, true
	case "name":
		return t.Name, true
	}
	return "", false
}

// ValidSlug reports whether s is a lowercase, hyphen-separated URL segment.
func ValidSlug(s string) bool {
	return len(s) <= 100 && slugPattern.MatchString(s)
}

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
