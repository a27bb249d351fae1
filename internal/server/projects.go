package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/auth"
	"github.com/wolfeidau/teamhub/internal/projects"
)

type createProjectRequest struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitnil,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
}

type addProjectMemberRequest struct {
	MemberID string `json:"memberId" validate:"required"`
}

type bulkProjectsRequest struct {
	ProjectIDs []*string `json:"projectIds"`
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
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

	list, err := s.projects.List(r.Context(), id.OrgID, page.store())
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, err := s.projects.Count(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, list, total, page)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.projects.Create(r.Context(), id.OrgID, id.UserID, projects.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.projects.Get(r.Context(), id.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.projects.Update(r.Context(), id.OrgID, chi.URLParam(r, "id"), projects.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.projects.Delete(r.Context(), id.OrgID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) archiveProject(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.projects.Archive(r.Context(), id.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) unarchiveProject(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.projects.Unarchive(r.Context(), id.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) addProjectMember(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req addProjectMemberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.projects.AddMember(r.Context(), id.OrgID, chi.URLParam(r, "id"), req.MemberID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) removeProjectMember(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.projects.RemoveMember(r.Context(), id.OrgID, chi.URLParam(r, "id"), chi.URLParam(r, "memberId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (s *Server) listArchivedProjects(w http.ResponseWriter, r *http.Request) {
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

	list, err := s.archive.ListArchived(r.Context(), id.OrgID, page.store())
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, err := s.archive.CountArchived(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, list, total, page)
}

func (s *Server) archiveSummary(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.archive.GetSummary(r.Context(), id.OrgID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) bulkArchive(w http.ResponseWriter, r *http.Request) {
	id, ids, err := s.bulkProjectIDs(r, "archive")
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.archive.BulkArchive(r.Context(), id.OrgID, id.UserID, ids))
}

func (s *Server) bulkRestore(w http.ResponseWriter, r *http.Request) {
	id, ids, err := s.bulkProjectIDs(r, "restore")
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.archive.BulkRestore(r.Context(), id.OrgID, id.UserID, ids))
}

// bulkProjectIDs validates a bulk request body and checks every project belongs
// to the caller's organization before any of them is touched.
func (s *Server) bulkProjectIDs(r *http.Request, verb string) (*auth.Identity, []string, error) {
	id, err := scope(r)
	if err != nil {
		return nil, nil, err
	}

	var req bulkProjectsRequest
	if err := decode(r, &req); err != nil {
		return nil, nil, err
	}

	switch {
	case len(req.ProjectIDs) == 0:
		return nil, nil, apperr.BadRequestf("At least one project ID is required")
	case len(req.ProjectIDs) > s.cfg.MaxBulkSize:
		return nil, nil, apperr.BadRequestf("Cannot %s more than %d projects at once", verb, s.cfg.MaxBulkSize)
	}

	ids := make([]string, len(req.ProjectIDs))
	for i, projectID := range req.ProjectIDs {
		if projectID == nil || strings.TrimSpace(*projectID) == "" {
			return nil, nil, apperr.Validationf("Invalid project ID at index %d", i)
		}
		ids[i] = *projectID
	}

	if err := s.archive.VerifyOwnership(r.Context(), id.OrgID, ids); err != nil {
		return nil, nil, err
	}

	return id, ids, nil
}
