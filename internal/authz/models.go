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

package authz

import (
	"errors"
)

// Domain errors
var (
	ErrAccessDenied = errors.New("access denied")
)

// Entity names a collection guarded by the policy evaluator.
type Entity string

const (
	EntityTenants     Entity = "tenants"
	EntityUsers       Entity = "users"
	EntityForms       Entity = "forms"
	EntitySubmissions Entity = "form-submissions"
)

// Operation is a CRUD operation on an entity.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Field names that predicates may constrain.
const (
	FieldID     = "id"
	FieldTenant = "tenant"
	FieldForm   = "form"
	FieldSlug   = "slug"
	FieldEmail  = "email"
)

// Record is implemented by every stored entity so that predicates can be
// evaluated in memory against a single document.
type Record interface {
	FieldValue(field string) (string, bool)
}

// Predicate is an equality constraint on one field. The zero value is not
// meaningful; use Equals or MatchNone.
type Predicate struct {
	Field string
	Value string
	none  bool
}

// Equals constrains field to value. An empty value matches nothing, so a
// caller without a tenant can never widen a tenant predicate into a
// wildcard.
func Equals(field, value string) Predicate {
	if value == "" {
		return MatchNone()
	}
	return Predicate{Field: field, Value: value}
}

// MatchNone returns a predicate that no record satisfies.
func MatchNone() Predicate {
	return Predicate{none: true}
}

// IsNone reports whether p can never match.
func (p Predicate) IsNone() bool {
	return p.none
}

// Matches evaluates p against r.
func (p Predicate) Matches(r Record) bool {
	if p.none || r == nil {
		return false
	}
	v, ok := r.FieldValue(p.Field)
	return ok && v == p.Value
}

// Filter is a conjunction of predicates. The empty filter matches every
// record.
type Filter []Predicate

// Where builds a filter from predicates.
func Where(preds ...Predicate) Filter {
	return append(Filter(nil), preds...)
}

// And returns a new filter with preds conjoined. f is never modified.
func (f Filter) And(preds ...Predicate) Filter {
	out := make(Filter, 0, len(f)+len(preds))
	out = append(out, f...)
	return append(out, preds...)
}

// Matches reports whether r satisfies every predicate in f.
func (f Filter) Matches(r Record) bool {
	for _, p := range f {
		if !p.Matches(r) {
			return false
		}
	}
	return true
}

// MatchesNothing reports whether f is unsatisfiable: it contains a
// MatchNone predicate or two different values for the same field.
func (f Filter) MatchesNothing() bool {
	seen := make(map[string]string, len(f))
	for _, p := range f {
		if p.none {
			return true
		}
		if v, ok := seen[p.Field]; ok && v != p.Value {
			return true
		}
		seen[p.Field] = p.Value
	}
	return false
}

// Value returns the value constrained for field, if any.
func (f Filter) Value(field string) (string, bool) {
	for _, p := range f {
		if !p.none && p.Field == field {
			return p.Value, true
		}
	}
	return "", false
}

// DecisionKind tags a Decision.
type DecisionKind int

const (
	DecisionDenied DecisionKind = iota
	DecisionUnconditional
	DecisionScoped
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionUnconditional:
		return "unconditional"
	case DecisionScoped:
		return "scoped"
	default:
		return "denied"
	}
}

// Decision is the outcome of a policy evaluation: Denied, Unconditional, or
// Scoped by a predicate. The zero value is Denied.
type Decision struct {
	kind      DecisionKind
	predicate Predicate
}

// Denied refuses the operation.
func Denied() Decision {
	return Decision{kind: DecisionDenied}
}

// Unconditional allows the operation on every record.
func Unconditional() Decision {
	return Decision{kind: DecisionUnconditional}
}

// Scoped allows the operation on records matching p only.
func Scoped(p Predicate) Decision {
	return Decision{kind: DecisionScoped, predicate: p}
}

// Kind returns the variant tag.
func (d Decision) Kind() DecisionKind {
	return d.kind
}

// Predicate returns the scope predicate of a Scoped decision.
func (d Decision) Predicate() (Predicate, bool) {
	return d.predicate, d.kind == DecisionScoped
}

// Allowed reports whether the decision is anything other than Denied.
func (d Decision) Allowed() bool {
	return d.kind != DecisionDenied
}

// Apply narrows a caller-supplied filter for a multi-record operation. The
// scope predicate is conjoined with the caller's predicates, never replacing
// them.
func (d Decision) Apply(f Filter) (Filter, error) {
	switch d.kind {
	case DecisionUnconditional:
		return f.And(), nil
	case DecisionScoped:
		return f.And(d.predicate), nil
	default:
		return nil, ErrAccessDenied
	}
}

// Permits evaluates the decision against a single record, for fetch by id
// and for checking a record that is about to be created.
func (d Decision) Permits(r Record) bool {
	switch d.kind {
	case DecisionUnconditional:
		return true
	case DecisionScoped:
		return d.predicate.Matches(r)
	default:
		return false
	}
}

func (d Decision) String() string {
	if d.kind == DecisionScoped {
		if d.predicate.none {
			return "scoped(none)"
		}
		return "scoped(" + d.predicate.Field + "==" + d.predicate.Value + ")"
	}
	return d.kind.String()
}
