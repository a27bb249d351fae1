package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// BillingPlanStore implements store.BillingPlanStore using PostgreSQL.
// The initial migration seeds one plan per tier.
type BillingPlanStore struct {
	pool *pgxpool.Pool
}

func NewBillingPlanStore(pool *pgxpool.Pool) *BillingPlanStore {
	return &BillingPlanStore{pool: pool}
}

const billingPlanColumns = `plan_id, name, tier, max_members, max_projects, price_per_month, features`

func (s *BillingPlanStore) Get(ctx context.Context, planID string) (*models.BillingPlan, error) {
	return s.queryOne(ctx, `SELECT `+billingPlanColumns+` FROM billing_plans WHERE plan_id = $1`, planID)
}

func (s *BillingPlanStore) GetByTier(ctx context.Context, tier models.Tier) (*models.BillingPlan, error) {
	return s.queryOne(ctx, `SELECT `+billingPlanColumns+` FROM billing_plans WHERE tier = $1`, string(tier))
}

// Put inserts or replaces a plan.
func (s *BillingPlanStore) Put(ctx context.Context, plan *models.BillingPlan) error {
	features := plan.Features
	if features == nil {
		features = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO billing_plans (`+billingPlanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (plan_id) DO UPDATE SET
			name = EXCLUDED.name,
			tier = EXCLUDED.tier,
			max_members = EXCLUDED.max_members,
			max_projects = EXCLUDED.max_projects,
			price_per_month = EXCLUDED.price_per_month,
			features = EXCLUDED.features
	`,
		plan.PlanID,
		plan.Name,
		string(plan.Tier),
		plan.MaxMembers,
		plan.MaxProjects,
		plan.PricePerMonth,
		features,
	)
	if err != nil {
		return fmt.Errorf("failed to put billing plan: %w", mapPostgresError(err, nil))
	}
	return nil
}

func (s *BillingPlanStore) queryOne(ctx context.Context, query string, arg string) (*models.BillingPlan, error) {
	var (
		plan models.BillingPlan
		tier string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&plan.PlanID,
		&plan.Name,
		&tier,
		&plan.MaxMembers,
		&plan.MaxProjects,
		&plan.PricePerMonth,
		&plan.Features,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrBillingPlanNotFound
		}
		return nil, fmt.Errorf("failed to get billing plan: %w", err)
	}
	plan.Tier = models.Tier(tier)
	return &plan, nil
}
