package models

import "math"

// Tier names a billing plan level.
type Tier string

const (
	TierFree         Tier = "FREE"
	TierStarter      Tier = "STARTER"
	TierProfessional Tier = "PROFESSIONAL"
	TierEnterprise   Tier = "ENTERPRISE"
)

// Unlimited is the ceiling used by plans without a member or project limit.
const Unlimited = math.MaxInt32

// BillingPlan describes the quotas and price of a tier.
type BillingPlan struct {
	PlanID        string   `json:"id"`
	Name          string   `json:"name"`
	Tier          Tier     `json:"tier"`
	MaxMembers    int      `json:"maxMembers"`
	MaxProjects   int      `json:"maxProjects"`
	PricePerMonth float64  `json:"pricePerMonth"`
	Features      []string `json:"features"`
}

// FreePlan returns the plan used whenever an organization's plan cannot be found.
func FreePlan() *BillingPlan {
	return &BillingPlan{
		PlanID:        DefaultPlanID,
		Name:          "Free",
		Tier:          TierFree,
		MaxMembers:    5,
		MaxProjects:   3,
		PricePerMonth: 0,
		Features:      []string{"Basic project management", "Up to 5 members", "Up to 3 projects"},
	}
}

// DefaultPlanForTier returns the built-in plan for tier. Unknown tiers get the free plan.
func DefaultPlanForTier(tier Tier) *BillingPlan {
	switch tier {
	case TierStarter:
		return &BillingPlan{
			PlanID:        "starter",
			Name:          "Starter",
			Tier:          TierStarter,
			MaxMembers:    15,
			MaxProjects:   10,
			PricePerMonth: 9.99,
			Features:      []string{"Advanced project management", "Up to 15 members", "Up to 10 projects"},
		}
	case TierProfessional:
		return &BillingPlan{
			PlanID:        "professional",
			Name:          "Professional",
			Tier:          TierProfessional,
			MaxMembers:    50,
			MaxProjects:   50,
			PricePerMonth: 29.99,
			Features:      []string{"Advanced project management", "Up to 50 members", "Up to 50 projects", "Analytics"},
		}
	case TierEnterprise:
		return &BillingPlan{
			PlanID:        "enterprise",
			Name:          "Enterprise",
			Tier:          TierEnterprise,
			MaxMembers:    Unlimited,
			MaxProjects:   Unlimited,
			PricePerMonth: 99.99,
			Features:      []string{"Unlimited members", "Unlimited projects", "Priority support", "SSO"},
		}
	default:
		return FreePlan()
	}
}
