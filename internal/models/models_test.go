package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Acme", expected: "acme"},
		{name: "spaces", input: "Acme   Widgets Inc", expected: "acme-widgets-inc"},
		{name: "punctuation stripped", input: "Acme, Inc. (EU)!", expected: "acme-inc-eu"},
		{name: "hyphens collapsed", input: "a -- b", expected: "a-b"},
		{name: "leading and trailing", input: "  -Acme-  ", expected: "acme"},
		{name: "only symbols", input: "!!!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, r)

	_, err = ParseRole("SUPERUSER")
	require.Error(t, err)
}

func TestParseTaskStatusAndPriority(t *testing.T) {
	st, err := ParseTaskStatus("in_review")
	require.NoError(t, err)
	require.Equal(t, TaskStatusInReview, st)

	_, err = ParseTaskStatus("BLOCKED")
	require.Error(t, err)

	p, err := ParseTaskPriority("URGENT")
	require.NoError(t, err)
	require.Equal(t, TaskPriorityUrgent, p)

	_, err = ParseTaskPriority("")
	require.Error(t, err)
}

func TestDefaultPlanForTier(t *testing.T) {
	tests := []struct {
		tier        Tier
		planID      string
		maxMembers  int
		maxProjects int
		price       float64
	}{
		{tier: TierStarter, planID: "starter", maxMembers: 15, maxProjects: 10, price: 9.99},
		{tier: TierProfessional, planID: "professional", maxMembers: 50, maxProjects: 50, price: 29.99},
		{tier: TierEnterprise, planID: "enterprise", maxMembers: Unlimited, maxProjects: Unlimited, price: 99.99},
		{tier: TierFree, planID: "free", maxMembers: 5, maxProjects: 3, price: 0},
		{tier: Tier("PLATINUM"), planID: "free", maxMembers: 5, maxProjects: 3, price: 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			plan := DefaultPlanForTier(tt.tier)
			require.Equal(t, tt.planID, plan.PlanID)
			require.Equal(t, tt.maxMembers, plan.MaxMembers)
			require.Equal(t, tt.maxProjects, plan.MaxProjects)
			require.InDelta(t, tt.price, plan.PricePerMonth, 0.001)
		})
	}
}

func TestProjectHasMember(t *testing.T) {
	p := &Project{MemberIDs: []string{"a", "b"}}
	require.True(t, p.HasMember("b"))
	require.False(t, p.HasMember("c"))
}
