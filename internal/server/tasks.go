package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/tasks"
)

type createTaskRequest struct {
	ProjectID   string   `json:"projectId" validate:"required"`
	Title       string   `json:"title" validate:"max=500"`
	Description string   `json:"description" validate:"max=10000"`
	AssigneeID  string   `json:"assigneeId"`
	Priority    string   `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags" validate:"max=50"`
}

type updateTaskRequest struct {
	Title       *string  `json:"title" validate:"omitnil,max=500"`
	Description *string  `json:"description" validate:"omitnil,max=10000"`
	AssigneeID  *string  `json:"assigneeId"`
	Priority    *string  `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags" validate:"max=50"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// listTasks lists tasks across the organization's projects, or a single
// project's tasks when projectId is set. The status, priority and search
// filters apply in both cases, so a project scoped listing can be narrowed too
// (DESIGN.md open question decision 3).
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	query := tasks.ListQuery{
		ProjectID: q.Get("projectId"),
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
		Search:    q.Get("search"),
	}

	list, err := s.tasks.List(r.Context(), id.OrgID, query, page.store())
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, err := s.tasks.Count(r.Context(), id.OrgID, query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, list, total, page)
}

// filterTasks lists a project's tasks due in [startDate, endDate).
func (s *Server) filterTasks(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	projectID, startRaw, endRaw := q.Get("projectId"), q.Get("startDate"), q.Get("endDate")
	if projectID == "" || startRaw == "" || endRaw == "" {
		writeError(w, r, apperr.BadRequestf("projectId, startDate and endDate are required"))
		return
	}

	start, err := parseDate("startDate", startRaw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate("endDate", endRaw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !start.Before(end) {
		writeError(w, r, apperr.BadRequestf("startDate must be before endDate"))
		return
	}

	list, err := s.tasks.FilterByDateRange(r.Context(), id.OrgID, projectID, start, end, page.store())
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, err := s.tasks.CountByDateRange(r.Context(), id.OrgID, projectID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writePage(w, list, total, page)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createTaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	due, err := parseOptionalDate("dueDate", req.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.Create(r.Context(), id.OrgID, id.UserID, tasks.CreateRequest{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    req.Priority,
		DueDate:     due,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.Get(r.Context(), id.OrgID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateTaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	due, err := parseOptionalDate("dueDate", req.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.Update(r.Context(), id.OrgID, chi.URLParam(r, "id"), id.UserID, tasks.UpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    req.Priority,
		DueDate:     due,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), id.OrgID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateTaskStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.UpdateStatus(r.Context(), id.OrgID, chi.URLParam(r, "id"), id.UserID, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}
