package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) billingPlan(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	plan, err := s.billing.ResolvePlan(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) billingUsage(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	usage, err := s.billing.Usage(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usage)
}

func (s *Server) upgradeCheck(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	upgrade, err := s.billing.ShouldUpgrade(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"shouldUpgrade": upgrade})
}

func (s *Server) pricing(w http.ResponseWriter, r *http.Request) {
	plan, err := s.billing.PricingForTier(r.Context(), chi.URLParam(r, "tier"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
