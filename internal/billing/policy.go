// Package billing resolves an organization's billing plan and its quotas.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// Usage is an organization's current consumption against its plan.
type Usage struct {
	Plan         *models.BillingPlan `json:"plan"`
	MemberCount  int64               `json:"members"`
	MaxMembers   int                 `json:"maxMembers"`
	ProjectCount int64               `json:"projects"`
	MaxProjects  int                 `json:"maxProjects"`
}

// Policy resolves plans and counts usage. It holds no cached state.
type Policy struct {
	orgs     store.OrganizationStore
	plans    store.BillingPlanStore
	members  store.MemberStore
	projects store.ProjectStore
}

// NewPolicy creates a billing policy over the given stores.
func NewPolicy(stores store.Stores) *Policy {
	return &Policy{
		orgs:     stores.Organizations,
		plans:    stores.BillingPlans,
		members:  stores.Members,
		projects: stores.Projects,
	}
}

// ResolvePlan returns the plan an organization is on. A missing or unreadable
// plan document resolves to the free plan.
func (p *Policy) ResolvePlan(ctx context.Context, orgID string) (*models.BillingPlan, error) {
	org, err := p.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, apperr.NotFoundf("Organization not found")
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	planID := org.BillingPlanID
	if planID == "" {
		planID = models.DefaultPlanID
	}

	plan, err := p.plans.Get(ctx, planID)
	if err != nil {
		if !errors.Is(err, store.ErrBillingPlanNotFound) {
			log.Warn().Err(err).Str("org_id", orgID).Str("plan_id", planID).Msg("Falling back to free plan")
		}
		return models.FreePlan(), nil
	}

	return plan, nil
}

// Usage reports member and project counts alongside the plan limits.
func (p *Policy) Usage(ctx context.Context, orgID string) (*Usage, error) {
	plan, err := p.ResolvePlan(ctx, orgID)
	if err != nil {
		return nil, err
	}

	memberCount, err := p.members.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	projectCount, err := p.projects.CountByOrg(ctx, orgID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	return &Usage{
		Plan:         plan,
		MemberCount:  memberCount,
		MaxMembers:   plan.MaxMembers,
		ProjectCount: projectCount,
		MaxProjects:  plan.MaxProjects,
	}, nil
}

// ShouldUpgrade reports whether the organization has reached its member ceiling.
func (p *Policy) ShouldUpgrade(ctx context.Context, orgID string) (bool, error) {
	plan, err := p.ResolvePlan(ctx, orgID)
	if err != nil {
		return false, err
	}

	count, err := p.members.CountByOrg(ctx, orgID)
	if err != nil {
		return false, fmt.Errorf("failed to count members: %w", err)
	}

	return count >= int64(plan.MaxMembers), nil
}

// PricingForTier returns the catalogue plan for tier, or the built-in default for it.
func (p *Policy) PricingForTier(ctx context.Context, tier string) (*models.BillingPlan, error) {
	t := models.Tier(strings.ToUpper(strings.TrimSpace(tier)))

	plan, err := p.plans.GetByTier(ctx, t)
	if err != nil {
		if errors.Is(err, store.ErrBillingPlanNotFound) {
			return models.DefaultPlanForTier(t), nil
		}
		return nil, fmt.Errorf("failed to get plan for tier: %w", err)
	}

	return plan, nil
}
