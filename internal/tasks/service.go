// Package tasks manages tasks. Every access is authorized through the owning project.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/notify"
	"github.com/wolfeidau/teamhub/internal/store"
)

// ProjectResolver performs the tenant ownership check for projects.
type ProjectResolver interface {
	Get(ctx context.Context, orgID, projectID string) (*models.Project, error)
	IDs(ctx context.Context, orgID string) ([]string, error)
}

type CreateRequest struct {
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string // optional
	Priority    string // optional, defaults to MEDIUM
	DueDate     *time.Time
	Tags        []string
}

// UpdateRequest carries the editable task fields. Nil fields are left unchanged;
// an empty AssigneeID clears the assignee.
type UpdateRequest struct {
	Title       *string
	Description *string
	AssigneeID  *string
	Priority    *string
	DueDate     *time.Time
	Tags        []string
}

// ListQuery scopes a task listing. Without a ProjectID every project of the
// organization is searched.
type ListQuery struct {
	ProjectID string
	Status    string
	Priority  string
	Search    string
}

type Service struct {
	tasks    store.TaskStore
	projects ProjectResolver
	events   notify.Emitter
	now      func() time.Time
}

func NewService(tasks store.TaskStore, projects ProjectResolver, events notify.Emitter) *Service {
	return &Service{
		tasks:    tasks,
		projects: projects,
		events:   events,
		now:      time.Now,
	}
}

// Create adds a task to a project owned by orgID. A supplied assignee must be a
// member of the project.
func (s *Service) Create(ctx context.Context, orgID, userID string, req CreateRequest) (*models.Task, error) {
	if req.ProjectID == "" {
		return nil, apperr.BadRequestf("Project ID is required")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.BadRequestf("Task title is required")
	}

	priority := models.TaskPriorityMedium
	if req.Priority != "" {
		p, err := models.ParseTaskPriority(req.Priority)
		if err != nil {
			return nil, apperr.Validationf("Invalid task priority: %s", req.Priority)
		}
		priority = p
	}

	project, err := s.projects.Get(ctx, orgID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	if req.AssigneeID != "" && !project.HasMember(req.AssigneeID) {
		return nil, apperr.BadRequestf("Assignee is not a member of this project")
	}

	taskID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	now := s.now().UTC()
	task := &models.Task{
		TaskID:      taskID.String(),
		ProjectID:   project.ProjectID,
		Title:       title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		DueDate:     req.DueDate,
		Tags:        normalizeTags(req.Tags),
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if req.AssigneeID != "" {
		task.AssigneeID = &req.AssigneeID
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Info().Str("org_id", orgID).Str("project_id", project.ProjectID).Str("task_id", task.TaskID).Msg("Task created")

	if task.AssigneeID != nil {
		s.emitAssigned(orgID, userID, task)
	}

	return task, nil
}

// Get returns a task after re-validating ownership of its project.
func (s *Service) Get(ctx context.Context, orgID, taskID string) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, apperr.NotFoundf("Task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if _, err := s.projects.Get(ctx, orgID, task.ProjectID); err != nil {
		return nil, err
	}

	return task, nil
}

// List returns tasks visible to orgID matching q.
func (s *Service) List(ctx context.Context, orgID string, q ListQuery, page store.Page) ([]*models.Task, error) {
	filter, err := s.filter(ctx, orgID, q)
	if err != nil {
		return nil, err
	}

	if len(filter.ProjectIDs) == 0 {
		return []*models.Task{}, nil
	}

	tasks, err := s.tasks.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Count mirrors List.
func (s *Service) Count(ctx context.Context, orgID string, q ListQuery) (int64, error) {
	filter, err := s.filter(ctx, orgID, q)
	if err != nil {
		return 0, err
	}

	if len(filter.ProjectIDs) == 0 {
		return 0, nil
	}

	count, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// FilterByDateRange returns a project's tasks due in [start, end), earliest first.
func (s *Service) FilterByDateRange(ctx context.Context, orgID, projectID string, start, end time.Time, page store.Page) ([]*models.Task, error) {
	filter, err := s.dateFilter(ctx, orgID, projectID, start, end)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to filter tasks: %w", err)
	}
	return tasks, nil
}

// CountByDateRange mirrors FilterByDateRange.
func (s *Service) CountByDateRange(ctx context.Context, orgID, projectID string, start, end time.Time) (int64, error) {
	filter, err := s.dateFilter(ctx, orgID, projectID, start, end)
	if err != nil {
		return 0, err
	}

	count, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Update applies a partial update. Unlike Create, a new assignee is not checked
// against the project's members.
func (s *Service) Update(ctx context.Context, orgID, taskID, userID string, req UpdateRequest) (*models.Task, error) {
	current, err := s.Get(ctx, orgID, taskID)
	if err != nil {
		return nil, err
	}

	patch := store.TaskPatch{
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Tags:        normalizeTags(req.Tags),
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.BadRequestf("Task title cannot be empty")
		}
		patch.Title = &title
	}

	if req.Priority != nil {
		p, err := models.ParseTaskPriority(*req.Priority)
		if err != nil {
			return nil, apperr.Validationf("Invalid task priority: %s", *req.Priority)
		}
		patch.Priority = &p
	}

	if err := s.apply(ctx, taskID, patch); err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, orgID, taskID)
	if err != nil {
		return nil, err
	}

	if updated.AssigneeID != nil && (current.AssigneeID == nil || *current.AssigneeID != *updated.AssigneeID) {
		s.emitAssigned(orgID, userID, updated)
	}

	return updated, nil
}

// Delete soft-deletes a task.
func (s *Service) Delete(ctx context.Context, orgID, taskID string) error {
	if _, err := s.Get(ctx, orgID, taskID); err != nil {
		return err
	}

	if err := s.tasks.SoftDelete(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return apperr.NotFoundf("Task not found")
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// UpdateStatus sets the task status. Any recognized status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, orgID, taskID, userID, newStatus string) (*models.Task, error) {
	status, err := models.ParseTaskStatus(newStatus)
	if err != nil {
		return nil, apperr.Validationf("Invalid task status: %s", newStatus)
	}

	current, err := s.Get(ctx, orgID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, taskID, store.TaskPatch{Status: &status}); err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, orgID, taskID)
	if err != nil {
		return nil, err
	}

	if current.Status != status {
		s.events.Emit(notify.Event{
			Type:      notify.TaskStatusChanged,
			OrgID:     orgID,
			ActorID:   userID,
			ProjectID: updated.ProjectID,
			TaskID:    updated.TaskID,
			TaskTitle: updated.Title,
			OldStatus: string(current.Status),
			NewStatus: string(status),
		})
	}

	return updated, nil
}

func (s *Service) filter(ctx context.Context, orgID string, q ListQuery) (store.TaskFilter, error) {
	filter := store.TaskFilter{Search: strings.TrimSpace(q.Search)}

	if q.Status != "" {
		st, err := models.ParseTaskStatus(q.Status)
		if err != nil {
			return filter, apperr.Validationf("Invalid task status: %s", q.Status)
		}
		filter.Status = &st
	}

	if q.Priority != "" {
		p, err := models.ParseTaskPriority(q.Priority)
		if err != nil {
			return filter, apperr.Validationf("Invalid task priority: %s", q.Priority)
		}
		filter.Priority = &p
	}

	if q.ProjectID != "" {
		if _, err := s.projects.Get(ctx, orgID, q.ProjectID); err != nil {
			return filter, err
		}
		filter.ProjectIDs = []string{q.ProjectID}
		return filter, nil
	}

	ids, err := s.projects.IDs(ctx, orgID)
	if err != nil {
		return filter, err
	}
	filter.ProjectIDs = ids

	return filter, nil
}

func (s *Service) dateFilter(ctx context.Context, orgID, projectID string, start, end time.Time) (store.TaskFilter, error) {
	if !start.Before(end) {
		return store.TaskFilter{}, apperr.BadRequestf("startDate must be before endDate")
	}

	if _, err := s.projects.Get(ctx, orgID, projectID); err != nil {
		return store.TaskFilter{}, err
	}

	return store.TaskFilter{
		ProjectIDs: []string{projectID},
		DueFrom:    &start,
		DueBefore:  &end,
	}, nil
}

func (s *Service) apply(ctx context.Context, taskID string, patch store.TaskPatch) error {
	if err := s.tasks.Update(ctx, taskID, patch); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return apperr.NotFoundf("Task not found")
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (s *Service) emitAssigned(orgID, actorID string, task *models.Task) {
	s.events.Emit(notify.Event{
		Type:       notify.TaskAssigned,
		OrgID:      orgID,
		ActorID:    actorID,
		ProjectID:  task.ProjectID,
		TaskID:     task.TaskID,
		TaskTitle:  task.Title,
		AssigneeID: *task.AssigneeID,
	})
}

// normalizeTags trims and de-duplicates tags, preserving order. Nil stays nil.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
