package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// ProjectStore implements store.ProjectStore using PostgreSQL.
type ProjectStore struct {
	pool *pgxpool.Pool
}

// NewProjectStore creates a new PostgreSQL-backed project store.
func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{pool: pool}
}

const projectColumns = `project_id, org_id, name, description, status, member_ids, created_by,
	archived_by, archived_at, restored_by, restored_at, created_at, updated_at`

// Create inserts a project.
func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	memberIDs := p.MemberIDs
	if memberIDs == nil {
		memberIDs = []string{}
	}

	_, err := s.pool.Exec(ctx, query,
		p.ProjectID,
		p.OrgID,
		p.Name,
		p.Description,
		string(p.Status),
		memberIDs,
		p.CreatedBy,
		p.ArchivedBy,
		p.ArchivedAt,
		p.RestoredBy,
		p.RestoredAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", mapPostgresError(err, nil))
	}

	log.Debug().Str("project_id", p.ProjectID).Str("org_id", p.OrgID).Msg("Created project")

	return nil
}

// Get retrieves a live project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE project_id = $1 AND deleted_at IS NULL`

	p, err := scanProject(s.pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

// ListByOrg returns live projects of an organization, newest first.
func (s *ProjectStore) ListByOrg(ctx context.Context, orgID string, status *models.ProjectStatus, page store.Page) ([]*models.Project, error) {
	conds := sq.And{sq.Eq{"org_id": orgID}, sq.Eq{"deleted_at": nil}}
	if status != nil {
		conds = append(conds, sq.Eq{"status": string(*status)})
	}

	q := psql.Select(projectColumns).
		From("projects").
		Where(conds).
		OrderBy("created_at DESC", "project_id")

	query, args, err := paginate(q, page).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build project query: %w", err)
	}

	return s.list(ctx, query, args...)
}

// ListArchived returns archived projects of an organization, most recently updated first.
func (s *ProjectStore) ListArchived(ctx context.Context, orgID string, page store.Page) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + ` FROM projects
		WHERE org_id = $1 AND status = $2 AND deleted_at IS NULL
		ORDER BY updated_at DESC, project_id
		OFFSET $3 LIMIT $4
	`

	return s.list(ctx, query, orgID, string(models.ProjectStatusArchived), page.Skip, limitArg(page))
}

// CountByOrg counts live projects of an organization.
func (s *ProjectStore) CountByOrg(ctx context.Context, orgID string, status *models.ProjectStatus) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM projects
		WHERE org_id = $1 AND deleted_at IS NULL AND ($2::text IS NULL OR status = $2)
	`, orgID, stringPtr(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// ListIDs returns up to store.MaxProjectIDs live project IDs of an organization.
func (s *ProjectStore) ListIDs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT project_id FROM projects
		WHERE org_id = $1 AND deleted_at IS NULL
		ORDER BY project_id
		LIMIT $2
	`, orgID, store.MaxProjectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list project ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect project ids: %w", err)
	}
	return ids, nil
}

// CountByMember counts, per member, the organization's live projects listing them.
func (s *ProjectStore) CountByMember(ctx context.Context, orgID string) (map[string]int64, error) {
	query, args, err := psql.Select("m.member_id", "count(*)").
		From("projects CROSS JOIN LATERAL unnest(member_ids) AS m(member_id)").
		Where(sq.Eq{"org_id": orgID, "deleted_at": nil}).
		GroupBy("m.member_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build project aggregate query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects by member: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			memberID string
			count    int64
		)
		if err := rows.Scan(&memberID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan project count: %w", err)
		}
		counts[memberID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project counts: %w", err)
	}

	return counts, nil
}

// Update applies a partial update to a live project.
func (s *ProjectStore) Update(ctx context.Context, projectID string, patch store.ProjectPatch) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE projects SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			status      = COALESCE($4, status),
			archived_by = COALESCE($5, archived_by),
			archived_at = COALESCE($6, archived_at),
			restored_by = COALESCE($7, restored_by),
			restored_at = COALESCE($8, restored_at),
			updated_at  = $9
		WHERE project_id = $1 AND deleted_at IS NULL
	`,
		projectID,
		patch.Name,
		patch.Description,
		stringPtr(patch.Status),
		patch.ArchivedBy,
		patch.ArchivedAt,
		patch.RestoredBy,
		patch.RestoredAt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", mapPostgresError(err, nil))
	}
	if result.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}

// AddMember appends memberID to the project's member set if absent.
func (s *ProjectStore) AddMember(ctx context.Context, projectID, memberID string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE projects SET
			member_ids = CASE WHEN $2 = ANY(member_ids) THEN member_ids ELSE array_append(member_ids, $2) END,
			updated_at = $3
		WHERE project_id = $1 AND deleted_at IS NULL
	`, projectID, memberID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}

// RemoveMember drops memberID from the project's member set.
func (s *ProjectStore) RemoveMember(ctx context.Context, projectID, memberID string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE projects SET member_ids = array_remove(member_ids, $2), updated_at = $3
		WHERE project_id = $1 AND deleted_at IS NULL
	`, projectID, memberID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}

// SoftDelete marks a live project as deleted.
func (s *ProjectStore) SoftDelete(ctx context.Context, projectID string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE projects SET deleted_at = $2, updated_at = $2
		WHERE project_id = $1 AND deleted_at IS NULL
	`, projectID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}

func (s *ProjectStore) list(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var (
		p      models.Project
		status string
	)
	err := row.Scan(
		&p.ProjectID,
		&p.OrgID,
		&p.Name,
		&p.Description,
		&status,
		&p.MemberIDs,
		&p.CreatedBy,
		&p.ArchivedBy,
		&p.ArchivedAt,
		&p.RestoredBy,
		&p.RestoredAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = models.ProjectStatus(status)
	return &p, nil
}
