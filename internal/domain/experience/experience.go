package experience

import (
	"time"

	"placementhub/internal/common"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// MaxLivePerUser caps how many experiences one student may hold at once.
const MaxLivePerUser = 2

type Round struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Experience struct {
	ID              common.UUID    `json:"id"`
	OwnerID         string         `json:"owner_id"`
	OwnerName       string         `json:"owner_name"`
	OwnerEmail      string         `json:"owner_email"`
	Company         string         `json:"company"`
	GraduationYear  int            `json:"graduation_year"`
	Body            string         `json:"body"`
	Rounds          []Round        `json:"rounds,omitempty"`
	DocumentURL     string         `json:"document_url,omitempty"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	Version         int            `json:"version"`
	SubmissionCount int            `json:"submission_count"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy      string         `json:"approved_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
