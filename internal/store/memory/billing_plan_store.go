package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// BillingPlanStore implements store.BillingPlanStore using in-memory storage.
type BillingPlanStore struct {
	mu sync.RWMutex

	plans map[string]*models.BillingPlan // plan_id -> BillingPlan
}

// NewBillingPlanStore creates an empty plan catalogue.
func NewBillingPlanStore() *BillingPlanStore {
	return &BillingPlanStore{
		plans: make(map[string]*models.BillingPlan),
	}
}

// Get retrieves a plan by ID.
func (s *BillingPlanStore) Get(ctx context.Context, planID string) (*models.BillingPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, exists := s.plans[planID]
	if !exists {
		return nil, store.ErrBillingPlanNotFound
	}

	return clonePlan(plan), nil
}

// GetByTier retrieves the plan for a tier.
func (s *BillingPlanStore) GetByTier(ctx context.Context, tier models.Tier) (*models.BillingPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, plan := range s.plans {
		if plan.Tier == tier {
			return clonePlan(plan), nil
		}
	}

	return nil, store.ErrBillingPlanNotFound
}

// Put inserts or replaces a plan.
func (s *BillingPlanStore) Put(ctx context.Context, plan *models.BillingPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[plan.PlanID] = clonePlan(plan)

	return nil
}

func clonePlan(plan *models.BillingPlan) *models.BillingPlan {
	clone := *plan
	clone.Features = slices.Clone(plan.Features)
	return &clone
}
