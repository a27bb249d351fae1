package server

import "net/http"

func (s *Server) analyticsDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dash, err := s.analytics.Dashboard(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) analyticsTasks(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.analytics.Tasks(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// analyticsMembers reports per member task and project counts.
func (s *Server) analyticsMembers(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.analytics.Members(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
