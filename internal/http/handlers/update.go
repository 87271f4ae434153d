package handlers

import (
	"net/http"

	"placementhub/internal/app"
	"placementhub/internal/http/middleware"
	"placementhub/internal/http/response"
)

type UpdateHandler struct {
	updates *app.UpdateService
}

func NewUpdateHandler(updates *app.UpdateService) *UpdateHandler {
	return &UpdateHandler{updates: updates}
}

type updateRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	CompanyName    string `json:"company_name"`
	Priority       int    `json:"priority"`
	SkipModeration bool   `json:"skip_moderation"`
}

type toggleRequest struct {
	Active bool `json:"active"`
}

type extractRequest struct {
	Text string `json:"text"`
}

func (h *UpdateHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.updates.Create(r.Context(), app.UpdateDraft{
		Title:       req.Title,
		Content:     req.Content,
		CompanyName: req.CompanyName,
		Priority:    req.Priority,
	}, identity, req.SkipModeration)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *UpdateHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.updates.ListActive(r.Context(), queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *UpdateHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.updates.ListAll(r.Context(), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *UpdateHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.updates.ToggleActive(r.Context(), id, req.Active, identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *UpdateHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.updates.SoftDelete(r.Context(), id, identity); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *UpdateHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.updates.PermanentDelete(r.Context(), id, identity); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *UpdateHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	draft, err := h.updates.ExtractDraft(r.Context(), req.Text)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, draft)
}
