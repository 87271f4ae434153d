package experience

import (
	"context"
	"time"

	"placementhub/internal/common"
)

// StatusChange is a guarded transition of the approval status. The repository
// must apply it only while the stored status still equals Expected, so a
// concurrent admin action and a stale caller cannot overwrite each other.
type StatusChange struct {
	Expected        ApprovalStatus
	Next            ApprovalStatus
	RejectionReason string
	ApprovedAt      *time.Time
	ApprovedBy      string
}

type Repository interface {
	Create(ctx context.Context, exp Experience) (*Experience, error)
	// Update replaces content and workflow counters, guarded on the status the
	// caller read. A mismatch yields a conflict error.
	Update(ctx context.Context, exp Experience, expected ApprovalStatus) (*Experience, error)
	ChangeStatus(ctx context.Context, id common.UUID, change StatusChange) (*Experience, error)
	GetByID(ctx context.Context, id common.UUID) (*Experience, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	ListApproved(ctx context.Context, limit, offset int) ([]Experience, error)
	ListAll(ctx context.Context, limit, offset int) ([]Experience, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Experience, error)
	Delete(ctx context.Context, id common.UUID) error
}
