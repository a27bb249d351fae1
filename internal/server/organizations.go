package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/auth"
	"github.com/wolfeidau/teamhub/internal/members"
	"github.com/wolfeidau/teamhub/internal/organizations"
)

const maxBulkInvites = 50

type createOrganizationRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	OwnerName string `json:"ownerName" validate:"max=100"`
}

type updateOrganizationRequest struct {
	Name *string `json:"name" validate:"omitnil,max=100"`
}

type inviteRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"max=100"`
	Role  string `json:"role"`
}

type bulkInviteRequest struct {
	Invites []inviteRequest `json:"invites"`
}

type inviteResult struct {
	Email    string `json:"email"`
	Status   string `json:"status"`
	MemberID string `json:"memberId,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type bulkInviteResponse struct {
	OrganizationID string         `json:"organizationId"`
	Results        []inviteResult `json:"results"`
	Summary        struct {
		Total   int `json:"total"`
		Invited int `json:"invited"`
		Failed  int `json:"failed"`
	} `json:"summary"`
}

// createOrganization signs up a new organization owned by the caller.
// The caller's token does not need to be scoped to an organization yet.
func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req createOrganizationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	org, err := s.orgs.Create(r.Context(), organizations.Creator{
		UserID: id.UserID,
		Email:  id.Email,
		Name:   req.OwnerName,
	}, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

// pathOrganization resolves the {id} path parameter, which must be the caller's organization.
func pathOrganization(r *http.Request) (*auth.Identity, error) {
	id, err := scope(r)
	if err != nil {
		return nil, err
	}
	if chi.URLParam(r, "id") != id.OrgID {
		return nil, apperr.Forbiddenf("Access denied to this organization")
	}
	return id, nil
}

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathOrganization(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	org, err := s.orgs.Get(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

func (s *Server) updateOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathOrganization(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateOrganizationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	org, err := s.orgs.Update(r.Context(), id.OrgID, organizations.UpdateRequest{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

func (s *Server) updateOrganizationSettings(w http.ResponseWriter, r *http.Request) {
	id, err := pathOrganization(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var settings map[string]any
	if err := decode(r, &settings); err != nil {
		writeError(w, r, err)
		return
	}

	org, err := s.orgs.UpdateSettings(r.Context(), id.OrgID, settings)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// bulkInvite invites each entry in order through the member service, so every
// entry sees the quota left by the ones before it.
func (s *Server) bulkInvite(w http.ResponseWriter, r *http.Request) {
	id, err := pathOrganization(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req bulkInviteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	switch {
	case len(req.Invites) == 0:
		writeError(w, r, apperr.BadRequestf("At least one invite is required"))
		return
	case len(req.Invites) > maxBulkInvites:
		writeError(w, r, apperr.BadRequestf("Cannot invite more than %d members at once", maxBulkInvites))
		return
	}

	resp := bulkInviteResponse{
		OrganizationID: id.OrgID,
		Results:        make([]inviteResult, 0, len(req.Invites)),
	}
	resp.Summary.Total = len(req.Invites)

	for _, invite := range req.Invites {
		member, err := s.members.Invite(r.Context(), id.OrgID, id.UserID, members.InviteRequest{
			Email: invite.Email,
			Name:  invite.Name,
			Role:  invite.Role,
		})
		if err != nil {
			if _, classified := apperr.KindOf(err); !classified {
				writeError(w, r, err)
				return
			}
			resp.Results = append(resp.Results, inviteResult{
				Email:  invite.Email,
				Status: "failed",
				Reason: apperr.Message(err),
			})
			resp.Summary.Failed++
			continue
		}

		resp.Results = append(resp.Results, inviteResult{
			Email:    member.Email,
			Status:   "invited",
			MemberID: member.MemberID,
		})
		resp.Summary.Invited++
	}

	writeJSON(w, http.StatusOK, resp)
}
