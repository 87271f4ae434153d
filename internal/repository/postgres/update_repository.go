package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"placementhub/internal/common"
	"placementhub/internal/domain/update"
)

type UpdateRepository struct {
	db *sql.DB
}

func NewUpdateRepository(db *sql.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

const updateColumns = `id, posted_by, posted_by_name, title, content, company_name, priority, is_active,
	ai_checked, ai_approved, ai_confidence, ai_issues, ai_category, ai_checked_at,
	auto_approved, auto_approval_scheduled_for, manually_reviewed, created_at, updated_at`

func (r *UpdateRepository) Create(ctx context.Context, u update.Update) (*update.Update, error) {
	u.ID = common.NewUUID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO updates (id, posted_by, posted_by_name, title, content, company_name, priority, is_active,
		ai_checked, ai_approved, ai_confidence, ai_issues, ai_category, ai_checked_at,
		auto_approved, auto_approval_scheduled_for, manually_reviewed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		u.ID, u.PostedBy, u.PostedByName, u.Title, u.Content, u.CompanyName, u.Priority, u.IsActive,
		u.AIModeration.Checked, u.AIModeration.Approved, u.AIModeration.Confidence, pq.Array(u.AIModeration.Issues), u.AIModeration.Category, u.AIModeration.CheckedAt,
		u.AutoApproved, u.AutoApprovalScheduledFor, u.ManuallyReviewed, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create update", err)
	}
	return &u, nil
}

func (r *UpdateRepository) GetByID(ctx context.Context, id common.UUID) (*update.Update, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+updateColumns+` FROM updates WHERE id = $1`, id)
	u, err := scanUpdate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "update not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load update", err)
	}
	return u, nil
}

func (r *UpdateRepository) ListActive(ctx context.Context, limit, offset int) ([]update.Update, error) {
	return r.list(ctx, `SELECT `+updateColumns+` FROM updates WHERE is_active = TRUE
		ORDER BY priority DESC, created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *UpdateRepository) ListAll(ctx context.Context, limit, offset int) ([]update.Update, error) {
	return r.list(ctx, `SELECT `+updateColumns+` FROM updates ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *UpdateRepository) ListAutoApprovalCandidates(ctx context.Context, cutoff time.Time) ([]update.Update, error) {
	return r.list(ctx, `SELECT `+updateColumns+` FROM updates
		WHERE is_active = FALSE AND manually_reviewed = FALSE AND auto_approved = FALSE AND created_at <= $1
		ORDER BY created_at ASC`, cutoff)
}

func (r *UpdateRepository) SetActive(ctx context.Context, id common.UUID, from, to bool) (*update.Update, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE updates SET is_active = $1, updated_at = $2 WHERE id = $3 AND is_active = $4`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to set update active flag", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, common.NewError(common.CodeConflict, "update was modified concurrently", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *UpdateRepository) SaveModeration(ctx context.Context, id common.UUID, snapshot update.AIModeration) error {
	result, err := r.db.ExecContext(ctx, `UPDATE updates SET ai_checked = $1, ai_approved = $2, ai_confidence = $3, ai_issues = $4, ai_category = $5, ai_checked_at = $6, updated_at = $7
		WHERE id = $8`,
		snapshot.Checked, snapshot.Approved, snapshot.Confidence, pq.Array(snapshot.Issues), snapshot.Category, snapshot.CheckedAt, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to save moderation snapshot", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "update not found", sql.ErrNoRows)
	}
	return nil
}

func (r *UpdateRepository) ActivateAutoApproved(ctx context.Context, id common.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE updates SET is_active = TRUE, auto_approved = TRUE, updated_at = $1
		WHERE id = $2 AND is_active = FALSE AND manually_reviewed = FALSE AND auto_approved = FALSE`,
		time.Now().UTC(), id)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to activate update", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to activate update", err)
	}
	return rows > 0, nil
}

func (r *UpdateRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM updates WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete update", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "update not found", sql.ErrNoRows)
	}
	return nil
}

func (r *UpdateRepository) list(ctx context.Context, query string, args ...any) ([]update.Update, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list updates", err)
	}
	defer rows.Close()
	var items []update.Update
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan update", err)
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}

func scanUpdate(row rowScanner) (*update.Update, error) {
	var u update.Update
	if err := row.Scan(&u.ID, &u.PostedBy, &u.PostedByName, &u.Title, &u.Content, &u.CompanyName, &u.Priority, &u.IsActive,
		&u.AIModeration.Checked, &u.AIModeration.Approved, &u.AIModeration.Confidence, pq.Array(&u.AIModeration.Issues), &u.AIModeration.Category, &u.AIModeration.CheckedAt,
		&u.AutoApproved, &u.AutoApprovalScheduledFor, &u.ManuallyReviewed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
