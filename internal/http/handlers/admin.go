package handlers

import (
	"net/http"
	"strings"

	"placementhub/internal/common"
	"placementhub/internal/domain/admin"
	"placementhub/internal/http/middleware"
	"placementhub/internal/http/response"
)

type AdminHandler struct {
	directory *admin.AllowList
	repo      admin.Repository
}

func NewAdminHandler(directory *admin.AllowList, repo admin.Repository) *AdminHandler {
	return &AdminHandler{directory: directory, repo: repo}
}

type adminRequest struct {
	Email string `json:"email"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		response.Error(w, common.NewValidationError("invalid admin", map[string]string{"email": "a valid email is required"}))
		return
	}
	if err := h.repo.Add(r.Context(), email, identity.Email); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, admin.Entry{Email: email, AddedBy: identity.Email})
}

func (h *AdminHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		response.Error(w, common.NewValidationError("invalid admin", map[string]string{"email": "email is required"}))
		return
	}
	if h.directory.IsSuperAdmin(email) {
		response.Error(w, common.NewError(common.CodeForbidden, "the super admin cannot be removed", nil))
		return
	}
	if err := h.repo.Remove(r.Context(), email); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
