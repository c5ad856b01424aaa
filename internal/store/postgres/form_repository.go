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
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/form"
)

var formColumns = columns{
	authz.FieldID:     "id",
	authz.FieldTenant: "tenant_id",
	"title":           "title",
}

const formSelect = `
	SELECT id, tenant_id, title, fields, confirmation_type, confirmation_message,
		redirect_url, emails, created_at, updated_at
	FROM forms`

// FormRepository implements form.Repository
type FormRepository struct {
	db *DB
}

// NewFormRepository creates a new form repository
func NewFormRepository(db *DB) *FormRepository {
	return &FormRepository{db: db}
}

// Create creates a new form
func (r *FormRepository) Create(ctx context.Context, f *form.Form) error {
	fields, emails, err := marshalForm(f)
	if err != nil {
		return err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO forms (id, tenant_id, title, fields, confirmation_type, confirmation_message,
			redirect_url, emails, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, f.ID, f.TenantID, f.Title, fields, string(f.ConfirmationType), f.ConfirmationMessage,
		redirectURL(f), emails, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert form: %w", err)
	}
	return nil
}

// GetByID retrieves a form by ID
func (r *FormRepository) GetByID(ctx context.Context, id string) (*form.Form, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	f, err := scanForm(r.db.pool.QueryRow(ctx, formSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, form.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return f, nil
}

// Update updates a form. The owning tenant is never rewritten.
func (r *FormRepository) Update(ctx context.Context, f *form.Form) error {
	fields, emails, err := marshalForm(f)
	if err != nil {
		return err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.pool.Exec(ctx, `
		UPDATE forms
		SET title = $2, fields = $3, confirmation_type = $4, confirmation_message = $5,
			redirect_url = $6, emails = $7, updated_at = $8
		WHERE id = $1
	`, f.ID, f.Title, fields, string(f.ConfirmationType), f.ConfirmationMessage,
		redirectURL(f), emails, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return form.ErrFormNotFound
	}
	return nil
}

// Delete deletes a form and, by cascade, its submissions
func (r *FormRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.pool.Exec(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return form.ErrFormNotFound
	}
	return nil
}

// Find lists forms matching filter
func (r *FormRepository) Find(ctx context.Context, filter authz.Filter) ([]*form.Form, error) {
	where, args, err := formColumns.where(filter, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.pool.Query(ctx, formSelect+` WHERE `+where+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	forms := []*form.Form{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// Count counts forms matching filter
func (r *FormRepository) Count(ctx context.Context, filter authz.Filter) (int, error) {
	where, args, err := formColumns.where(filter, 1)
	if err != nil {
		return 0, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int
	if err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM forms WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count forms: %w", err)
	}
	return n, nil
}

func marshalForm(f *form.Form) (fields, emails []byte, err error) {
	fields, err = json.Marshal(nonNil(f.Fields))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode form fields: %w", err)
	}
	emails, err = json.Marshal(nonNil(f.Emails))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode form emails: %w", err)
	}
	return fields, emails, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func redirectURL(f *form.Form) *string {
	if f.Redirect == nil {
		return nil
	}
	return nullable(f.Redirect.URL)
}

func scanForm(row pgx.Row) (*form.Form, error) {
	var (
		f                form.Form
		fields, emails   []byte
		confirmationType string
		redirect         *string
	)
	err := row.Scan(
		&f.ID, &f.TenantID, &f.Title, &fields, &confirmationType, &f.ConfirmationMessage,
		&redirect, &emails, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.ConfirmationType = form.ConfirmationType(confirmationType)
	if redirect != nil {
		f.Redirect = &form.Redirect{URL: *redirect}
	}
	if err := json.Unmarshal(fields, &f.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode form fields: %w", err)
	}
	if err := json.Unmarshal(emails, &f.Emails); err != nil {
		return nil, fmt.Errorf("failed to decode form emails: %w", err)
	}
	return &f, nil
}
