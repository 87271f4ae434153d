package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"placementhub/internal/common"
	"placementhub/internal/domain/experience"
)

type ExperienceRepository struct {
	db *sql.DB
}

func NewExperienceRepository(db *sql.DB) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

const experienceColumns = `id, owner_id, owner_name, owner_email, company, graduation_year, body, rounds, document_url,
	approval_status, version, submission_count, rejection_reason, approved_at, approved_by, created_at, updated_at`

func (r *ExperienceRepository) Create(ctx context.Context, exp experience.Experience) (*experience.Experience, error) {
	exp.ID = common.NewUUID()
	now := time.Now().UTC()
	exp.CreatedAt = now
	exp.UpdatedAt = now
	rounds, err := json.Marshal(exp.Rounds)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode rounds", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO experiences (id, owner_id, owner_name, owner_email, company, graduation_year, body, rounds, document_url,
		approval_status, version, submission_count, rejection_reason, approved_at, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		exp.ID, exp.OwnerID, exp.OwnerName, exp.OwnerEmail, exp.Company, exp.GraduationYear, exp.Body, rounds, exp.DocumentURL,
		exp.ApprovalStatus, exp.Version, exp.SubmissionCount, exp.RejectionReason, exp.ApprovedAt, exp.ApprovedBy, exp.CreatedAt, exp.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create experience", err)
	}
	return &exp, nil
}

func (r *ExperienceRepository) Update(ctx context.Context, exp experience.Experience, expected experience.ApprovalStatus) (*experience.Experience, error) {
	exp.UpdatedAt = time.Now().UTC()
	rounds, err := json.Marshal(exp.Rounds)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode rounds", err)
	}
	result, err := r.db.ExecContext(ctx, `UPDATE experiences SET company = $1, graduation_year = $2, body = $3, rounds = $4, document_url = $5,
		approval_status = $6, version = $7, submission_count = $8, rejection_reason = $9, updated_at = $10
		WHERE id = $11 AND approval_status = $12`,
		exp.Company, exp.GraduationYear, exp.Body, rounds, exp.DocumentURL,
		exp.ApprovalStatus, exp.Version, exp.SubmissionCount, exp.RejectionReason, exp.UpdatedAt, exp.ID, expected)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update experience", err)
	}
	if err := r.guardAffected(ctx, result, exp.ID); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *ExperienceRepository) ChangeStatus(ctx context.Context, id common.UUID, change experience.StatusChange) (*experience.Experience, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE experiences SET approval_status = $1, rejection_reason = $2, approved_at = $3, approved_by = $4, updated_at = $5
		WHERE id = $6 AND approval_status = $7`,
		change.Next, change.RejectionReason, change.ApprovedAt, change.ApprovedBy, time.Now().UTC(), id, change.Expected)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to change experience status", err)
	}
	if err := r.guardAffected(ctx, result, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// guardAffected turns a zero-row conditional update into NotFound or Conflict,
// depending on whether the record still exists.
func (r *ExperienceRepository) guardAffected(ctx context.Context, result sql.Result, id common.UUID) error {
	rows, err := result.RowsAffected()
	if err != nil || rows > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return common.NewError(common.CodeConflict, "experience was modified concurrently", nil)
}

func (r *ExperienceRepository) GetByID(ctx context.Context, id common.UUID) (*experience.Experience, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE id = $1`, id)
	exp, err := scanExperience(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "experience not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load experience", err)
	}
	return exp, nil
}

func (r *ExperienceRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiences WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count experiences", err)
	}
	return count, nil
}

func (r *ExperienceRepository) ListApproved(ctx context.Context, limit, offset int) ([]experience.Experience, error) {
	return r.list(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE approval_status = $1
		ORDER BY approved_at DESC NULLS LAST, created_at DESC LIMIT $2 OFFSET $3`, experience.StatusApproved, limit, offset)
}

func (r *ExperienceRepository) ListAll(ctx context.Context, limit, offset int) ([]experience.Experience, error) {
	return r.list(ctx, `SELECT `+experienceColumns+` FROM experiences ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *ExperienceRepository) ListByOwner(ctx context.Context, ownerID string) ([]experience.Experience, error) {
	return r.list(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *ExperienceRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM experiences WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete experience", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "experience not found", sql.ErrNoRows)
	}
	return nil
}

func (r *ExperienceRepository) list(ctx context.Context, query string, args ...any) ([]experience.Experience, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list experiences", err)
	}
	defer rows.Close()
	var items []experience.Experience
	for rows.Next() {
		exp, err := scanExperience(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan experience", err)
		}
		items = append(items, *exp)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperience(row rowScanner) (*experience.Experience, error) {
	var exp experience.Experience
	var rounds []byte
	if err := row.Scan(&exp.ID, &exp.OwnerID, &exp.OwnerName, &exp.OwnerEmail, &exp.Company, &exp.GraduationYear, &exp.Body, &rounds, &exp.DocumentURL,
		&exp.ApprovalStatus, &exp.Version, &exp.SubmissionCount, &exp.RejectionReason, &exp.ApprovedAt, &exp.ApprovedBy, &exp.CreatedAt, &exp.UpdatedAt); err != nil {
		return nil, err
	}
	if len(rounds) > 0 {
		if err := json.Unmarshal(rounds, &exp.Rounds); err != nil {
			return nil, err
		}
	}
	return &exp, nil
}
