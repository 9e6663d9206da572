package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/library-circulation/internal/model"
	"github.com/Shivanand-hulikatti/library-circulation/internal/service"
)

// MemberHandler serves authentication, profiles and member administration.
type MemberHandler struct {
	svc *service.MemberService
}

// NewMemberHandler constructs a MemberHandler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// Register handles POST /auth/register
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *MemberHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Profile handles GET /auth/profile
func (h *MemberHandler) Profile(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Profile(r.Context(), actorFrom(r).MemberID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateProfile handles PUT /auth/profile
func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileRequest
	if !readJSON(w, r, &req) {
		return
	}
	m, err := h.svc.UpdateProfile(r.Context(), actorFrom(r).MemberID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListMembers handles GET /members?search=&page=&limit=
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	list, err := h.svc.ListMembers(r.Context(), model.MemberFilter{
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetMember handles GET /members/{id}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMember handles PUT /members/{id}
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req model.MemberUpdateRequest
	if !readJSON(w, r, &req) {
		return
	}
	m, err := h.svc.UpdateMember(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMember handles DELETE /members/{id}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "member deleted successfully"})
}

// MemberHistory handles GET /members/{id}/transactions
func (h *MemberHandler) MemberHistory(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.MemberHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}
