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
	"github.com/tenantforms/tenantforms/internal/audit"
	"github.com/tenantforms/tenantforms/internal/authz"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/id"
	"github.com/tenantforms/tenantforms/internal/identity"
)

const msgNotFound = "Submission not found"

// SubmitInput is a submission as received from a client. Any tenant the
// client may have sent is never read.
type SubmitInput struct {
	FormID             string
	Data               Data
	SubmitterIP        string
	SubmitterUserAgent string
}

// Receipt is returned to the submitter.
type Receipt struct {
	Submission  *Submission
	Message     string
	RedirectURL string
}

// UpdateInput is a partial submission update. Only the submitted data is
// mutable; a form or tenant in the patch is rejected.
type UpdateInput struct {
	Data     Data    `json:"submissionData"`
	FormID   *string `json:"form"`
	TenantID *string `json:"tenant"`
}

// Service provides submission intake and review
type Service struct {
	repo          Repository
	forms         FormResolver
	auditLogger   audit.Logger
	now           func() time.Time
	lookupTimeout time.Duration
}

// NewService creates a new submission service. lookupTimeout bounds the
// form resolution of each submission; zero leaves it to the caller's
// context.
func NewService(repo Repository, forms FormResolver, auditLogger audit.Logger, lookupTimeout time.Duration) *Service {
	return &Service{
		repo:          repo,
		forms:         forms,
		auditLogger:   auditLogger,
		now:           time.Now,
		lookupTimeout: lookupTimeout,
	}
}

// Submit records a submission. Anyone may submit, including anonymous
// callers; the tenant always comes from the referenced form.
func (s *Service) Submit(ctx context.Context, caller identity.Identity, in SubmitInput) (*Receipt, error) {
	if !authz.Evaluate(caller, authz.EntitySubmissions, authz.OpCreate).Allowed() {
		return nil, s.denied(ctx, caller, "", authz.OpCreate)
	}
	if in.FormID == "" {
		return nil, apperr.Validation("form reference required")
	}
	if in.Data == nil {
		return nil, apperr.Validation("submission data is required")
	}

	sub := &Submission{
		FormID:             in.FormID,
		Data:               in.Data,
		SubmitterIP:        in.SubmitterIP,
		SubmitterUserAgent: in.SubmitterUserAgent,
	}

	f, err := s.resolve(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := ValidateData(f, sub.Data); err != nil {
		return nil, err
	}

	sub.ID = id.NewUUIDv7()
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, form.ErrFormNotFound) {
			return nil, apperr.NotFound("Form not found", err)
		}
		return nil, apperr.Infrastructure("submission store", err)
	}

	actor := caller.UserID
	if caller.IsAnonymous() {
		actor = audit.ActorAnonymous
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeSubmissionCreated,
		TenantID:  sub.TenantID,
		ActorID:   actor,
		Resource:  audit.ResourceSubmission,
		IPAddress: sub.SubmitterIP,
		UserAgent: sub.SubmitterUserAgent,
		Metadata:  map[string]any{audit.AttrFormID: sub.FormID},
	})

	return &Receipt{
		Submission:  sub,
		Message:     form.ConfirmationText(f),
		RedirectURL: form.RedirectURL(f),
	}, nil
}

func (s *Service) resolve(ctx context.Context, sub *Submission) (*form.Form, error) {
	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}
	return PropagateTenant(ctx, s.forms, sub, s.now)
}

// GetSubmission retrieves a submission by ID. Submissions outside the
// caller's scope are reported as not found.
func (s *Service) GetSubmission(ctx context.Context, caller identity.Identity, submissionID string) (*Submission, error) {
	decision := authz.Evaluate(caller, authz.EntitySubmissions, authz.OpRead)
	if !decision.Allowed() {
		return nil, s.denied(ctx, caller, "", authz.OpRead)
	}

	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, storeError(err)
	}
	if !decision.Permits(sub) {
		return nil, apperr.NotFound(msgNotFound, ErrSubmissionNotFound)
	}
	return sub, nil
}

// ListSubmissions lists the submissions visible to caller that match filter.
func (s *Service) ListSubmissions(ctx context.Context, caller identity.Identity, filter authz.Filter) ([]*Submission, error) {
	scoped, err := authz.Evaluate(caller, authz.EntitySubmissions, authz.OpRead).Apply(filter)
	if err != nil {
		return nil, s.denied(ctx, caller, "", authz.OpRead)
	}
	if scoped.MatchesNothing() {
		return []*Submission{}, nil
	}

	subs, err := s.repo.Find(ctx, scoped)
	if err != nil {
		return nil, storeError(err)
	}
	return subs, nil
}

// UpdateSubmission replaces the submitted data of a submission.
func (s *Service) UpdateSubmission(ctx context.Context, caller identity.Identity, submissionID string, in UpdateInput) (*Submission, error) {
	sub, err := s.GetSubmission(ctx, caller, submissionID)
	if err != nil {
		return nil, err
	}
	if !authz.Evaluate(caller, authz.EntitySubmissions, authz.OpUpdate).Permits(sub) {
		return nil, s.denied(ctx, caller, sub.TenantID, authz.OpUpdate)
	}
	if in.FormID != nil || in.TenantID != nil {
		return nil, apperr.Validation("form and tenant of a submission are read-only")
	}
	if in.Data == nil {
		return nil, apperr.Validation("submission data is required")
	}

	f, err := s.forms.GetByID(ctx, sub.FormID)
	if err != nil {
		if errors.Is(err, form.ErrFormNotFound) {
			return nil, apperr.NotFound("Form not found", err)
		}
		return nil, apperr.Infrastructure("resolve form", err)
	}
	if err := ValidateData(f, in.Data); err != nil {
		return nil, err
	}

	sub.Data = in.Data
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSubmissionUpdated,
		TenantID: sub.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceSubmission,
		Metadata: map[string]any{audit.AttrFormID: sub.FormID},
	})
	return sub, nil
}

// DeleteSubmission removes a submission.
func (s *Service) DeleteSubmission(ctx context.Context, caller identity.Identity, submissionID string) error {
	sub, err := s.GetSubmission(ctx, caller, submissionID)
	if err != nil {
		return err
	}
	if !authz.Evaluate(caller, authz.EntitySubmissions, authz.OpDelete).Permits(sub) {
		return s.denied(ctx, caller, sub.TenantID, authz.OpDelete)
	}
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return storeError(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSubmissionDeleted,
		TenantID: sub.TenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceSubmission,
		Metadata: map[string]any{audit.AttrFormID: sub.FormID},
	})
	return nil
}

func (s *Service) denied(ctx context.Context, caller identity.Identity, tenantID string, op authz.Operation) error {
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccessDenied,
		TenantID: tenantID,
		ActorID:  caller.UserID,
		Resource: audit.ResourceSubmission,
		Metadata: map[string]any{
			audit.AttrOperation: string(op),
			audit.AttrRole:      string(caller.EffectiveRole()),
		},
	})
	return apperr.AccessDenied("You are not allowed to perform this action", authz.ErrAccessDenied)
}

func storeError(err error) error {
	if errors.Is(err, ErrSubmissionNotFound) {
		return apperr.NotFound(msgNotFound, err)
	}
	return apperr.Infrastructure("submission store", err)
}
