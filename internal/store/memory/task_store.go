package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// TaskStore implements store.TaskStore using in-memory storage.
type TaskStore struct {
	mu sync.RWMutex

	tasks map[string]*models.Task // task_id -> Task
}

// NewTaskStore creates a new in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*models.Task),
	}
}

// Create inserts a task.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.TaskID] = cloneTask(task)

	return nil
}

// Get retrieves a live task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tasks[taskID]
	if !exists || t.DeletedAt != nil {
		return nil, store.ErrTaskNotFound
	}

	return cloneTask(t), nil
}

// List returns live tasks matching filter.
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*models.Task, error) {
	result := s.match(filter)

	if filter.DueFrom != nil || filter.DueBefore != nil {
		slices.SortFunc(result, func(a, b *models.Task) int {
			return cmp.Or(a.DueDate.Compare(*b.DueDate), cmp.Compare(a.TaskID, b.TaskID))
		})
	} else {
		slices.SortFunc(result, func(a, b *models.Task) int {
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.TaskID, b.TaskID))
		})
	}

	return paginate(result, page), nil
}

// Count returns the number of live tasks matching filter.
func (s *TaskStore) Count(ctx context.Context, filter store.TaskFilter) (int64, error) {
	return int64(len(s.match(filter))), nil
}

// CountGrouped folds the live tasks of projectIDs into per value counts.
func (s *TaskStore) CountGrouped(ctx context.Context, projectIDs []string, by store.TaskGrouping) (map[string]int64, error) {
	if !by.Valid() {
		return nil, fmt.Errorf("unknown task grouping %q", by)
	}

	counts := map[string]int64{}
	for _, t := range s.match(store.TaskFilter{ProjectIDs: projectIDs}) {
		var key string
		switch by {
		case store.GroupByStatus:
			key = string(t.Status)
		case store.GroupByPriority:
			key = string(t.Priority)
		case store.GroupByProject:
			key = t.ProjectID
		case store.GroupByAssignee:
			if t.AssigneeID == nil {
				continue
			}
			key = *t.AssigneeID
		}
		counts[key]++
	}
	return counts, nil
}

// ListRecent returns live tasks of projectIDs, most recently updated first.
func (s *TaskStore) ListRecent(ctx context.Context, projectIDs []string, limit int) ([]*models.Task, error) {
	result := s.match(store.TaskFilter{ProjectIDs: projectIDs})

	slices.SortFunc(result, func(a, b *models.Task) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.TaskID, b.TaskID))
	})

	return paginate(result, store.Page{Limit: limit}), nil
}

// Update applies a partial update to a live task.
func (s *TaskStore) Update(ctx context.Context, taskID string, patch store.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tasks[taskID]
	if !exists || t.DeletedAt != nil {
		return store.ErrTaskNotFound
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.AssigneeID != nil {
		if *patch.AssigneeID == "" {
			t.AssigneeID = nil
		} else {
			t.AssigneeID = ptr(*patch.AssigneeID)
		}
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		t.DueDate = ptr(*patch.DueDate)
	}
	if patch.Tags != nil {
		t.Tags = slices.Clone(patch.Tags)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now()

	return nil
}

// SoftDelete marks a live task as deleted.
func (s *TaskStore) SoftDelete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tasks[taskID]
	if !exists || t.DeletedAt != nil {
		return store.ErrTaskNotFound
	}

	now := time.Now()
	t.DeletedAt = &now
	t.UpdatedAt = now

	return nil
}

func (s *TaskStore) match(filter store.TaskFilter) []*models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	var result []*models.Task
	for _, t := range s.tasks {
		if t.DeletedAt != nil || !slices.Contains(filter.ProjectIDs, t.ProjectID) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		if filter.DueFrom != nil || filter.DueBefore != nil {
			if t.DueDate == nil {
				continue
			}
			if filter.DueFrom != nil && t.DueDate.Before(*filter.DueFrom) {
				continue
			}
			if filter.DueBefore != nil && !t.DueDate.Before(*filter.DueBefore) {
				continue
			}
		}
		result = append(result, cloneTask(t))
	}
	return result
}

func cloneTask(t *models.Task) *models.Task {
	clone := *t
	clone.Tags = slices.Clone(t.Tags)
	return &clone
}
