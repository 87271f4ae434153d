package admin

import (
	"context"
	"strings"
)

// Directory answers whether an email belongs to an admin. It is the single
// source of truth; there is no side channel that bypasses it.
type Directory interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
	IsSuperAdmin(email string) bool
}

// Repository is the mutable allow-list behind the directory.
type Repository interface {
	Exists(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, email, addedBy string) error
	Remove(ctx context.Context, email string) error
	List(ctx context.Context) ([]Entry, error)
}

type Entry struct {
	Email   string `json:"email"`
	AddedBy string `json:"added_by"`
}

type AllowList struct {
	superAdmin string
	repo       Repository
}

func NewAllowList(superAdminEmail string, repo Repository) *AllowList {
	return &AllowList{superAdmin: normalizeEmail(superAdminEmail), repo: repo}
}

func (a *AllowList) IsSuperAdmin(email string) bool {
	return a.superAdmin != "" && normalizeEmail(email) == a.superAdmin
}

func (a *AllowList) IsAdmin(ctx context.Context, email string) (bool, error) {
	if a.IsSuperAdmin(email) {
		return true, nil
	}
	if a.repo == nil {
		return false, nil
	}
	return a.repo.Exists(ctx, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
