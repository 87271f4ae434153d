package update

import (
	"time"

	"placementhub/internal/common"
	"placementhub/internal/moderation"
)

const (
	MinPriority = 0
	MaxPriority = 10
)

// AIModeration is the stored snapshot of the latest authoritative moderation
// verdict. Checked guards the sweep against repeat AI calls: once true, the
// stored fields are the verdict.
type AIModeration struct {
	Checked    bool                `json:"checked"`
	Approved   bool                `json:"approved"`
	Confidence int                 `json:"confidence"`
	Issues     []string            `json:"issues,omitempty"`
	Category   moderation.Category `json:"category"`
	CheckedAt  *time.Time          `json:"checked_at,omitempty"`
}

// Verdict reconstitutes the stored snapshot for the decision policy.
func (m AIModeration) Verdict() moderation.Verdict {
	return moderation.Verdict{
		Success:    m.Checked,
		IsApproved: m.Approved,
		Confidence: m.Confidence,
		Issues:     m.Issues,
		Category:   m.Category,
	}
}

type Update struct {
	ID           common.UUID  `json:"id"`
	PostedBy     string       `json:"posted_by"`
	PostedByName string       `json:"posted_by_name"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	CompanyName  string       `json:"company_name"`
	Priority     int          `json:"priority"`
	IsActive     bool         `json:"is_active"`
	AIModeration AIModeration `json:"ai_moderation"`
	AutoApproved bool         `json:"auto_approved"`
	// AutoApprovalScheduledFor marks when the sweep may re-moderate an update
	// that passed creation-time moderation without enough confidence.
	AutoApprovalScheduledFor *time.Time `json:"auto_approval_scheduled_for,omitempty"`
	ManuallyReviewed         bool       `json:"manually_reviewed"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}
