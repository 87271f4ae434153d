package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"placementhub/internal/common"
	"placementhub/internal/domain/analytics"
	"placementhub/internal/domain/experience"
	"placementhub/internal/domain/user"
)

type ExperienceService struct {
	repo      experience.Repository
	analytics analytics.Repository
	now       func() time.Time
}

func NewExperienceService(repo experience.Repository, analyticsRepo analytics.Repository) *ExperienceService {
	return &ExperienceService{
		repo:      repo,
		analytics: analyticsRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ExperiencePatch carries the owner-editable content fields. Workflow fields
// are never patched directly.
type ExperiencePatch struct {
	Company        string
	GraduationYear int
	Body           string
	Rounds         []experience.Round
	DocumentURL    string
}

func (s *ExperienceService) Submit(ctx context.Context, patch ExperiencePatch, owner user.Identity) (*experience.Experience, error) {
	if err := validateExperienceContent(patch); err != nil {
		return nil, err
	}
	count, err := s.repo.CountByOwner(ctx, owner.ExternalID)
	if err != nil {
		return nil, err
	}
	if count >= experience.MaxLivePerUser {
		return nil, common.NewError(common.CodeQuotaExceeded, "you already have the maximum number of experiences; delete one before submitting another", nil)
	}
	created, err := s.repo.Create(ctx, experience.Experience{
		OwnerID:         owner.ExternalID,
		OwnerName:       owner.Name,
		OwnerEmail:      owner.Email,
		Company:         strings.TrimSpace(patch.Company),
		GraduationYear:  patch.GraduationYear,
		Body:            patch.Body,
		Rounds:          patch.Rounds,
		DocumentURL:     patch.DocumentURL,
		ApprovalStatus:  experience.StatusPending,
		Version:         1,
		SubmissionCount: 1,
	})
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "experience.submitted", UserID: &owner.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"experience_id": created.ID.String()})})
	return created, nil
}

// Edit resubmits an experience. A pending or rejected experience goes back to
// pending with its version held; an approved one stays live with its version
// bumped and the original approval metadata carried forward. Either way the
// submission counter grows.
func (s *ExperienceService) Edit(ctx context.Context, id common.UUID, patch ExperiencePatch, requester user.Identity) (*experience.Experience, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != requester.ExternalID {
		return nil, common.NewError(common.CodeForbidden, "experience belongs to another user", nil)
	}
	if err := validateExperienceContent(patch); err != nil {
		return nil, err
	}

	next := *current
	next.Company = strings.TrimSpace(patch.Company)
	next.GraduationYear = patch.GraduationYear
	next.Body = patch.Body
	next.Rounds = patch.Rounds
	next.DocumentURL = patch.DocumentURL
	next.SubmissionCount++

	prior := current.ApprovalStatus
	if prior == experience.StatusApproved {
		next.Version++
	} else {
		next.ApprovalStatus = experience.StatusPending
		next.RejectionReason = ""
	}

	updated, err := s.repo.Update(ctx, next, prior)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "experience.edited", UserID: &requester.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"experience_id": id.String(), "prior_status": string(prior)})})
	return updated, nil
}

func (s *ExperienceService) Approve(ctx context.Context, id common.UUID, actor user.Identity) (*experience.Experience, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	approvedAt := s.now()
	updated, err := s.repo.ChangeStatus(ctx, id, experience.StatusChange{
		Expected:   current.ApprovalStatus,
		Next:       experience.StatusApproved,
		ApprovedAt: &approvedAt,
		ApprovedBy: actor.Email,
	})
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "experience.approved", UserID: &actor.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"experience_id": id.String()})})
	return updated, nil
}

func (s *ExperienceService) Reject(ctx context.Context, id common.UUID, reason string, actor user.Identity) (*experience.Experience, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.NewValidationError("invalid rejection", map[string]string{"reason": "rejection reason is required"})
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.ChangeStatus(ctx, id, experience.StatusChange{
		Expected:        current.ApprovalStatus,
		Next:            experience.StatusRejected,
		RejectionReason: reason,
	})
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "experience.rejected", UserID: &actor.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"experience_id": id.String()})})
	return updated, nil
}

func (s *ExperienceService) Delete(ctx context.Context, id common.UUID, actor user.Identity) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "experience.deleted", UserID: &actor.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"experience_id": id.String()})})
	return nil
}

func (s *ExperienceService) ListPublic(ctx context.Context, limit, offset int) ([]experience.Experience, error) {
	return s.repo.ListApproved(ctx, limit, offset)
}

func (s *ExperienceService) ListAll(ctx context.Context, limit, offset int) ([]experience.Experience, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *ExperienceService) ListMine(ctx context.Context, owner user.Identity) ([]experience.Experience, error) {
	return s.repo.ListByOwner(ctx, owner.ExternalID)
}

func validateExperienceContent(patch ExperiencePatch) error {
	fields := map[string]string{}
	if strings.TrimSpace(patch.Company) == "" {
		fields["company"] = "company is required"
	}
	if patch.GraduationYear < 2000 || patch.GraduationYear > 2100 {
		fields["graduation_year"] = "graduation year must be between 2000 and 2100"
	}
	if strings.TrimSpace(patch.Body) == "" {
		fields["body"] = "experience body is required"
	}
	for i, round := range patch.Rounds {
		if strings.TrimSpace(round.Name) == "" {
			fields[fmt.Sprintf("rounds[%d]", i)] = "round name is required"
		}
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid experience", fields)
	}
	return nil
}
