package handlers

import (
	"net/http"
	"time"

	"placementhub/internal/app"
	"placementhub/internal/domain/experience"
	"placementhub/internal/http/middleware"
	"placementhub/internal/http/response"
)

const (
	submissionLimit  = 5
	submissionWindow = time.Hour
)

type ExperienceHandler struct {
	experiences *app.ExperienceService
	limiter     middleware.Limiter
}

func NewExperienceHandler(experiences *app.ExperienceService, limiter middleware.Limiter) *ExperienceHandler {
	return &ExperienceHandler{experiences: experiences, limiter: limiter}
}

type experienceRequest struct {
	Company        string             `json:"company"`
	GraduationYear int                `json:"graduation_year"`
	Body           string             `json:"body"`
	Rounds         []experience.Round `json:"rounds"`
	DocumentURL    string             `json:"document_url"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *ExperienceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	if h.limiter != nil && !h.limiter.Allow("experience:"+identity.ExternalID, submissionLimit, submissionWindow) {
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}
	var req experienceRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.experiences.Submit(r.Context(), app.ExperiencePatch{
		Company:        req.Company,
		GraduationYear: req.GraduationYear,
		Body:           req.Body,
		Rounds:         req.Rounds,
		DocumentURL:    req.DocumentURL,
	}, identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ExperienceHandler) Edit(w http.ResponseWriter, r *http.Request) {
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
	if h.limiter != nil && !h.limiter.Allow("experience:"+identity.ExternalID, submissionLimit, submissionWindow) {
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}
	var req experienceRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.experiences.Edit(r.Context(), id, app.ExperiencePatch{
		Company:        req.Company,
		GraduationYear: req.GraduationYear,
		Body:           req.Body,
		Rounds:         req.Rounds,
		DocumentURL:    req.DocumentURL,
	}, identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ExperienceHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.experiences.ListPublic(r.Context(), queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ExperienceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.experiences.ListMine(r.Context(), identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ExperienceHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.experiences.ListAll(r.Context(), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ExperienceHandler) Approve(w http.ResponseWriter, r *http.Request) {
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
	updated, err := h.experiences.Approve(r.Context(), id, identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ExperienceHandler) Reject(w http.ResponseWriter, r *http.Request) {
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
	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.experiences.Reject(r.Context(), id, req.Reason, identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *ExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.experiences.Delete(r.Context(), id, identity); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
