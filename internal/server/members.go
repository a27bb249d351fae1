package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfeidau/teamhub/internal/members"
)

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.members.List(r.Context(), id.OrgID, page.store())
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, err := s.members.Count(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, list, total, page)
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	member, err := s.members.Get(r.Context(), id.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

func (s *Server) inviteMember(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req inviteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	member, err := s.members.Invite(r.Context(), id.OrgID, id.UserID, members.InviteRequest{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateRoleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	member, err := s.members.UpdateRole(r.Context(), id.OrgID, id.UserID, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.members.Remove(r.Context(), id.OrgID, id.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
