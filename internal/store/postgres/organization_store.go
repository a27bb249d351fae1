package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

const organizationColumns = `org_id, name, slug, billing_plan_id, settings, created_at, updated_at`

// Create creates a new organization in the database.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	if err := insertOrganization(ctx, s.pool, org); err != nil {
		return err
	}

	log.Debug().
		Str("org_id", org.OrgID).
		Str("slug", org.Slug).
		Msg("Created organization")

	return nil
}

// CreateWithOwner inserts the organization and its owner membership in one
// transaction.
func (s *OrganizationStore) CreateWithOwner(ctx context.Context, org *models.Organization, owner *models.Member) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertOrganization(ctx, tx, org); err != nil {
			return err
		}
		return insertMember(ctx, tx, owner)
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("org_id", org.OrgID).
		Str("slug", org.Slug).
		Str("owner_id", owner.MemberID).
		Msg("Created organization with owner")

	return nil
}

func insertOrganization(ctx context.Context, db execer, org *models.Organization) error {
	query := `
		INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := db.Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.Slug,
		org.BillingPlanID,
		settingsOrEmpty(org.Settings),
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err, store.ErrOrganizationAlreadyExists))
	}
	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE org_id = $1`
	return s.queryOne(ctx, query, orgID)
}

// GetBySlug retrieves an organization by slug.
func (s *OrganizationStore) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`
	return s.queryOne(ctx, query, slug)
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE organizations SET
			name = $2,
			slug = $3,
			billing_plan_id = $4,
			settings = $5,
			updated_at = $6
		WHERE org_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.Slug,
		org.BillingPlanID,
		settingsOrEmpty(org.Settings),
		org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", mapPostgresError(err, store.ErrOrganizationAlreadyExists))
	}

	if result.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	log.Debug().
		Str("org_id", org.OrgID).
		Msg("Updated organization")

	return nil
}

func (s *OrganizationStore) queryOne(ctx context.Context, query string, arg string) (*models.Organization, error) {
	var org models.Organization
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&org.OrgID,
		&org.Name,
		&org.Slug,
		&org.BillingPlanID,
		&org.Settings,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if org.Settings == nil {
		org.Settings = map[string]any{}
	}

	return &org, nil
}

func settingsOrEmpty(settings map[string]any) map[string]any {
	if settings == nil {
		return map[string]any{}
	}
	return settings
}
