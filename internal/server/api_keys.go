package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfeidau/teamhub/internal/models"
)

type createAPIKeyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// createAPIKeyResponse is the only response that ever carries the secret.
type createAPIKeyResponse struct {
	Key    *models.APIKey `json:"key"`
	Secret string         `json:"secret"`
}

func (s *Server) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	keys, err := s.apiKeys.List(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": keys})
}

func (s *Server) createAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createAPIKeyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	key, secret, err := s.apiKeys.Create(r.Context(), id.OrgID, id.UserID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createAPIKeyResponse{Key: key, Secret: secret})
}

func (s *Server) getAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key, err := s.apiKeys.Get(r.Context(), id.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, key)
}

func (s *Server) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.apiKeys.Revoke(r.Context(), id.OrgID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
