package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"placementhub/internal/common"
	"placementhub/internal/domain/analytics"
	"placementhub/internal/domain/update"
	"placementhub/internal/domain/user"
	"placementhub/internal/moderation"
)

// ModerationClient is the slice of the AI client the workflow needs.
type ModerationClient interface {
	Configured() bool
	ModerateContent(ctx context.Context, text string) (moderation.Verdict, error)
	ExtractUpdateInfo(ctx context.Context, text string) (moderation.Draft, error)
}

type UpdateService struct {
	repo          update.Repository
	ai            ModerationClient
	analytics     analytics.Repository
	logger        Logger
	approvalDelay time.Duration
	now           func() time.Time
}

func NewUpdateService(repo update.Repository, ai ModerationClient, analyticsRepo analytics.Repository, logger Logger, approvalDelay time.Duration) *UpdateService {
	return &UpdateService{
		repo:          repo,
		ai:            ai,
		analytics:     analyticsRepo,
		logger:        logger,
		approvalDelay: approvalDelay,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type UpdateDraft struct {
	Title       string
	Content     string
	CompanyName string
	Priority    int
}

// Create records an announcement. With skipModeration the admin vouches for it
// and it goes live untouched by the AI. Otherwise a configured AI client gets
// one shot at immediate activation; anything short of a clean high-confidence
// verdict leaves the update inactive and schedules it for the sweep. A failed
// moderation call is logged, never surfaced: the update simply stays pending.
func (s *UpdateService) Create(ctx context.Context, draft UpdateDraft, postedBy user.Identity, skipModeration bool) (*update.Update, error) {
	if err := validateUpdateDraft(draft); err != nil {
		return nil, err
	}

	now := s.now()
	u := update.Update{
		PostedBy:     postedBy.ExternalID,
		PostedByName: postedBy.Name,
		Title:        strings.TrimSpace(draft.Title),
		Content:      draft.Content,
		CompanyName:  strings.TrimSpace(draft.CompanyName),
		Priority:     draft.Priority,
		AIModeration: update.AIModeration{Category: moderation.CategoryNotChecked},
	}

	switch {
	case skipModeration:
		u.IsActive = true
		u.ManuallyReviewed = true
	case s.ai != nil && s.ai.Configured():
		verdict, err := s.ai.ModerateContent(ctx, u.Title+"\n\n"+u.Content)
		if err != nil {
			s.logError("moderation failed for new update: " + err.Error())
		}
		eligible := moderation.IsEligibleForAutoApproval(verdict)
		checkedAt := now
		u.AIModeration = update.AIModeration{
			// Checked marks the authoritative verdict. The creation-time pass
			// is only authoritative when it activates the update; otherwise
			// the sweep re-moderates once the update has aged.
			Checked:    eligible,
			Approved:   verdict.IsApproved,
			Confidence: verdict.Confidence,
			Issues:     verdict.Issues,
			Category:   verdict.Category,
			CheckedAt:  &checkedAt,
		}
		if eligible {
			u.IsActive = true
			u.AutoApproved = true
		} else {
			scheduledFor := now.Add(s.approvalDelay)
			u.AutoApprovalScheduledFor = &scheduledFor
		}
	default:
		// No AI configured: everything waits for an admin.
		u.IsActive = false
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "update.created", UserID: &postedBy.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"update_id": created.ID.String(), "active": fmt.Sprintf("%t", created.IsActive)})})
	return created, nil
}

func (s *UpdateService) ToggleActive(ctx context.Context, id common.UUID, newState bool, actor user.Identity) (*update.Update, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsActive == newState {
		return current, nil
	}
	updated, err := s.repo.SetActive(ctx, id, current.IsActive, newState)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "update.toggled", UserID: &actor.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"update_id": id.String(), "active": fmt.Sprintf("%t", newState)})})
	return updated, nil
}

// SoftDelete hides an update without losing its history.
func (s *UpdateService) SoftDelete(ctx context.Context, id common.UUID, actor user.Identity) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.IsActive {
		return nil
	}
	if _, err := s.repo.SetActive(ctx, id, true, false); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "update.soft_deleted", UserID: &actor.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"update_id": id.String()})})
	return nil
}

func (s *UpdateService) PermanentDelete(ctx context.Context, id common.UUID, actor user.Identity) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "update.deleted", UserID: &actor.ExternalID, Payload: analyticsPayload(ctx, map[string]string{"update_id": id.String()})})
	return nil
}

func (s *UpdateService) ListActive(ctx context.Context, limit, offset int) ([]update.Update, error) {
	return s.repo.ListActive(ctx, limit, offset)
}

func (s *UpdateService) ListAll(ctx context.Context, limit, offset int) ([]update.Update, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// ExtractDraft runs the advisory extraction assist. It degrades to echoing the
// input back as content; it has no say in any approval decision.
func (s *UpdateService) ExtractDraft(ctx context.Context, text string) (moderation.Draft, error) {
	if strings.TrimSpace(text) == "" {
		return moderation.Draft{}, common.NewValidationError("invalid extraction request", map[string]string{"text": "text is required"})
	}
	if s.ai == nil || !s.ai.Configured() {
		return moderation.Draft{Success: false, Content: text}, nil
	}
	draft, err := s.ai.ExtractUpdateInfo(ctx, text)
	if err != nil {
		s.logError("extraction assist failed: " + err.Error())
	}
	return draft, nil
}

func validateUpdateDraft(draft UpdateDraft) error {
	fields := map[string]string{}
	if strings.TrimSpace(draft.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(draft.Content) == "" {
		fields["content"] = "content is required"
	}
	if strings.TrimSpace(draft.CompanyName) == "" {
		fields["company_name"] = "company name is required"
	}
	if draft.Priority < update.MinPriority || draft.Priority > update.MaxPriority {
		fields["priority"] = "priority must be between 0 and 10"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid update", fields)
	}
	return nil
}

func (s *UpdateService) logError(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Error(msg)
}
