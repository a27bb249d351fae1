package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// MemberStore implements store.MemberStore using PostgreSQL.
type MemberStore struct {
	pool *pgxpool.Pool
}

// NewMemberStore creates a new PostgreSQL-backed member store.
func NewMemberStore(pool *pgxpool.Pool) *MemberStore {
	return &MemberStore{pool: pool}
}

const memberColumns = `member_id, org_id, email, name, role, invited_by, invited_at, joined_at, created_at, updated_at`

// Create inserts a member. The partial unique index on (org_id, lower(email))
// rejects duplicate live emails.
func (s *MemberStore) Create(ctx context.Context, m *models.Member) error {
	return insertMember(ctx, s.pool, m)
}

func insertMember(ctx context.Context, db execer, m *models.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := db.Exec(ctx, query,
		m.MemberID,
		m.OrgID,
		m.Email,
		m.Name,
		string(m.Role),
		m.InvitedBy,
		m.InvitedAt,
		m.JoinedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", mapPostgresError(err, store.ErrMemberAlreadyExists))
	}

	return nil
}

// Get retrieves a live member by ID.
func (s *MemberStore) Get(ctx context.Context, memberID string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1 AND deleted_at IS NULL`

	m, err := scanMember(s.pool.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

// GetByEmail retrieves a live member of an organization by email.
func (s *MemberStore) GetByEmail(ctx context.Context, orgID, email string) (*models.Member, error) {
	query := `
		SELECT ` + memberColumns + ` FROM members
		WHERE org_id = $1 AND lower(email) = lower($2) AND deleted_at IS NULL
	`

	m, err := scanMember(s.pool.QueryRow(ctx, query, orgID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}

	return m, nil
}

// ListByOrg returns live members of an organization, newest first.
func (s *MemberStore) ListByOrg(ctx context.Context, orgID string, page store.Page) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + ` FROM members
		WHERE org_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, member_id
		OFFSET $2 LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, orgID, page.Skip, limitArg(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// CountByOrg returns the number of live members of an organization.
func (s *MemberStore) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM members WHERE org_id = $1 AND deleted_at IS NULL`,
		orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// UpdateRole changes a live member's role.
func (s *MemberStore) UpdateRole(ctx context.Context, memberID string, role models.Role) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE members SET role = $2, updated_at = $3
		WHERE member_id = $1 AND deleted_at IS NULL
	`, memberID, string(role), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", mapPostgresError(err, nil))
	}
	if result.RowsAffected() == 0 {
		return store.ErrMemberNotFound
	}
	return nil
}

// SoftDelete marks a live member as removed.
func (s *MemberStore) SoftDelete(ctx context.Context, memberID string) error {
	now := time.Now().UTC()
	result, err := s.pool.Exec(ctx, `
		UPDATE members SET deleted_at = $2, updated_at = $2
		WHERE member_id = $1 AND deleted_at IS NULL
	`, memberID, now)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrMemberNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (*models.Member, error) {
	var (
		m    models.Member
		role string
	)
	err := row.Scan(
		&m.MemberID,
		&m.OrgID,
		&m.Email,
		&m.Name,
		&role,
		&m.InvitedBy,
		&m.InvitedAt,
		&m.JoinedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Role = models.Role(role)
	return &m, nil
}
