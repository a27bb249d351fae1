package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/teamhub/internal/models"
)

// Sentinel errors for billing plan store operations
var (
	ErrBillingPlanNotFound = errors.New("billing plan not found")
)

// BillingPlanStore defines the interface for the billing plan catalogue.
type BillingPlanStore interface {
	// Get retrieves a plan by ID.
	// Returns ErrBillingPlanNotFound if no plan has the ID.
	Get(ctx context.Context, planID string) (*models.BillingPlan, error)

	// GetByTier retrieves the canonical plan for a tier.
	// Returns ErrBillingPlanNotFound if no plan has the tier.
	GetByTier(ctx context.Context, tier models.Tier) (*models.BillingPlan, error)

	// Put inserts or replaces a plan.
	Put(ctx context.Context, plan *models.BillingPlan) error
}
