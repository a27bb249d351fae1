package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a new PostgreSQL-backed task store.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

const taskColumns = `task_id, project_id, title, description, assignee_id, status, priority,
	due_date, tags, created_by, created_at, updated_at`

// Create inserts a task.
func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		t.TaskID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.AssigneeID,
		string(t.Status),
		string(t.Priority),
		t.DueDate,
		tags,
		t.CreatedBy,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", mapPostgresError(err, nil))
	}

	return nil
}

// Get retrieves a live task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1 AND deleted_at IS NULL`

	t, err := scanTask(s.pool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

// List returns live tasks matching filter.
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*models.Task, error) {
	query, args, err := taskListQuery(filter, page).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Count returns the number of live tasks matching filter.
func (s *TaskStore) Count(ctx context.Context, filter store.TaskFilter) (int64, error) {
	query, args, err := psql.Select("count(*)").From("tasks").Where(taskConds(filter)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build task count query: %w", err)
	}

	var count int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// CountGrouped counts live tasks of projectIDs with GROUP BY on the grouping column.
func (s *TaskStore) CountGrouped(ctx context.Context, projectIDs []string, by store.TaskGrouping) (map[string]int64, error) {
	if !by.Valid() {
		return nil, fmt.Errorf("unknown task grouping %q", by)
	}

	conds := taskConds(store.TaskFilter{ProjectIDs: projectIDs})
	if by == store.GroupByAssignee {
		conds = append(conds, sq.NotEq{"assignee_id": nil})
	}

	column := string(by)
	query, args, err := psql.Select(column, "count(*)").
		From("tasks").
		Where(conds).
		GroupBy(column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task aggregate query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by %s: %w", by, err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task counts: %w", err)
	}

	return counts, nil
}

// ListRecent returns live tasks of projectIDs, most recently updated first.
func (s *TaskStore) ListRecent(ctx context.Context, projectIDs []string, limit int) ([]*models.Task, error) {
	q := psql.Select(taskColumns).
		From("tasks").
		Where(taskConds(store.TaskFilter{ProjectIDs: projectIDs})).
		OrderBy("updated_at DESC", "task_id")

	query, args, err := paginate(q, store.Page{Limit: limit}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent task query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tasks: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent tasks: %w", err)
	}

	return tasks, nil
}

// Update applies a partial update to a live task. An empty AssigneeID clears the assignee.
func (s *TaskStore) Update(ctx context.Context, taskID string, patch store.TaskPatch) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE tasks SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			assignee_id = CASE WHEN $4::text IS NULL THEN assignee_id ELSE NULLIF($4, '') END,
			priority    = COALESCE($5, priority),
			due_date    = COALESCE($6, due_date),
			tags        = COALESCE($7, tags),
			status      = COALESCE($8, status),
			updated_at  = $9
		WHERE task_id = $1 AND deleted_at IS NULL
	`,
		taskID,
		patch.Title,
		patch.Description,
		patch.AssigneeID,
		stringPtr(patch.Priority),
		patch.DueDate,
		patch.Tags,
		stringPtr(patch.Status),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", mapPostgresError(err, nil))
	}
	if result.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// SoftDelete marks a live task as deleted.
func (s *TaskStore) SoftDelete(ctx context.Context, taskID string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE tasks SET deleted_at = $2, updated_at = $2
		WHERE task_id = $1 AND deleted_at IS NULL
	`, taskID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// taskListQuery orders by due date when a due date range is requested, otherwise newest first.
func taskListQuery(filter store.TaskFilter, page store.Page) sq.SelectBuilder {
	q := psql.Select(taskColumns).From("tasks").Where(taskConds(filter))
	if filter.DueFrom != nil || filter.DueBefore != nil {
		q = q.OrderBy("due_date ASC", "task_id")
	} else {
		q = q.OrderBy("created_at DESC", "task_id")
	}
	return paginate(q, page)
}

func taskConds(filter store.TaskFilter) sq.And {
	projectIDs := filter.ProjectIDs
	if projectIDs == nil {
		projectIDs = []string{}
	}

	conds := sq.And{
		sq.Expr("project_id = ANY(?)", projectIDs),
		sq.Eq{"deleted_at": nil},
	}
	if filter.Status != nil {
		conds = append(conds, sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Priority != nil {
		conds = append(conds, sq.Eq{"priority": string(*filter.Priority)})
	}
	if filter.Search != "" {
		conds = append(conds, sq.ILike{"title": containsPattern(filter.Search)})
	}
	if filter.DueFrom != nil {
		conds = append(conds, sq.GtOrEq{"due_date": *filter.DueFrom})
	}
	if filter.DueBefore != nil {
		conds = append(conds, sq.Lt{"due_date": *filter.DueBefore})
	}
	return conds
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		t                models.Task
		status, priority string
	)
	err := row.Scan(
		&t.TaskID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.AssigneeID,
		&status,
		&priority,
		&t.DueDate,
		&t.Tags,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.TaskPriority(priority)
	return &t, nil
}
