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
	"github.com/tenantforms/tenantforms/internal/submission"
)

var submissionColumns = columns{
	authz.FieldID:     "id",
	authz.FieldForm:   "form_id",
	authz.FieldTenant: "tenant_id",
}

const submissionSelect = `
	SELECT id, form_id, tenant_id, submission_data, submitted_at, submitter_ip, submitter_user_agent
	FROM form_submissions`

// SubmissionRepository implements submission.Repository
type SubmissionRepository struct {
	db *DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create stores a submission. A form deleted since the tenant was resolved
// surfaces as form.ErrFormNotFound.
func (r *SubmissionRepository) Create(ctx context.Context, s *submission.Submission) error {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("failed to encode submission data: %w", err)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO form_submissions (id, form_id, tenant_id, submission_data, submitted_at,
			submitter_ip, submitter_user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.FormID, s.TenantID, data, s.SubmittedAt, s.SubmitterIP, s.SubmitterUserAgent)
	if err != nil {
		if isForeignKeyViolation(err) {
			return form.ErrFormNotFound
		}
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*submission.Submission, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	s, err := scanSubmission(r.db.pool.QueryRow(ctx, submissionSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submission.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

// Update rewrites the submitted data. Form, tenant and submitter metadata
// are never updated.
func (r *SubmissionRepository) Update(ctx context.Context, s *submission.Submission) error {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("failed to encode submission data: %w", err)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.pool.Exec(ctx, `UPDATE form_submissions SET submission_data = $2 WHERE id = $1`, s.ID, data)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}
	return nil
}

// Delete deletes a submission
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.pool.Exec(ctx, `DELETE FROM form_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}
	return nil
}

// Find lists submissions matching filter, newest first
func (r *SubmissionRepository) Find(ctx context.Context, filter authz.Filter) ([]*submission.Submission, error) {
	where, args, err := submissionColumns.where(filter, 1)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.pool.Query(ctx, submissionSelect+` WHERE `+where+` ORDER BY submitted_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := []*submission.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func scanSubmission(row pgx.Row) (*submission.Submission, error) {
	var (
		s    submission.Submission
		data []byte
	)
	err := row.Scan(&s.ID, &s.FormID, &s.TenantID, &data, &s.SubmittedAt, &s.SubmitterIP, &s.SubmitterUserAgent)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.Data); err != nil {
		return nil, fmt.Errorf("failed to decode submission data: %w", err)
	}
	return &s, nil
}
