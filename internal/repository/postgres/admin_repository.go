package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"placementhub/internal/common"
	"placementhub/internal/domain/admin"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Exists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE email = $1`, strings.ToLower(email)).Scan(&count); err != nil {
		return false, common.NewError(common.CodeInternal, "failed to look up admin", err)
	}
	return count > 0, nil
}

func (r *AdminRepository) Add(ctx context.Context, email, addedBy string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO admins (email, added_by, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`, strings.ToLower(email), addedBy, time.Now().UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to add admin", err)
	}
	return nil
}

func (r *AdminRepository) Remove(ctx context.Context, email string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE email = $1`, strings.ToLower(email))
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to remove admin", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "admin not found", sql.ErrNoRows)
	}
	return nil
}

func (r *AdminRepository) List(ctx context.Context) ([]admin.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT email, added_by FROM admins ORDER BY email`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list admins", err)
	}
	defer rows.Close()
	var entries []admin.Entry
	for rows.Next() {
		var entry admin.Entry
		if err := rows.Scan(&entry.Email, &entry.AddedBy); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan admin", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
