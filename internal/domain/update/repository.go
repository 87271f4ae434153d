package update

import (
	"context"
	"time"

	"placementhub/internal/common"
)

type Repository interface {
	Create(ctx context.Context, u Update) (*Update, error)
	GetByID(ctx context.Context, id common.UUID) (*Update, error)
	ListActive(ctx context.Context, limit, offset int) ([]Update, error)
	ListAll(ctx context.Context, limit, offset int) ([]Update, error)
	// ListAutoApprovalCandidates returns inactive updates created at or before
	// the cutoff that were neither manually reviewed nor already auto-approved.
	ListAutoApprovalCandidates(ctx context.Context, cutoff time.Time) ([]Update, error)
	// SetActive flips the publication flag only while it still holds `from`;
	// a lost race yields a conflict error.
	SetActive(ctx context.Context, id common.UUID, from, to bool) (*Update, error)
	SaveModeration(ctx context.Context, id common.UUID, snapshot AIModeration) error
	// ActivateAutoApproved publishes a sweep-approved update. It commits only
	// if the update is still inactive, unreviewed, and not yet auto-approved;
	// otherwise it reports false without touching the row.
	ActivateAutoApproved(ctx context.Context, id common.UUID) (bool, error)
	Delete(ctx context.Context, id common.UUID) error
}
