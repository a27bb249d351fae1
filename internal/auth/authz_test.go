package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/teamhub/internal/models"
)

func TestOutranks(t *testing.T) {
	ordered := []models.Role{models.RoleViewer, models.RoleMember, models.RoleAdmin, models.RoleOwner}

	for i, a := range ordered {
		for j, b := range ordered {
			t.Run(string(a)+"_vs_"+string(b), func(t *testing.T) {
				require.Equal(t, i > j, Outranks(a, b))
			})
		}
	}
}

func TestOutranksIsIrreflexiveAndAsymmetric(t *testing.T) {
	roles := []models.Role{models.RoleViewer, models.RoleMember, models.RoleAdmin, models.RoleOwner}

	for _, a := range roles {
		require.False(t, Outranks(a, a))
		for _, b := range roles {
			require.False(t, Outranks(a, b) && Outranks(b, a))
		}
	}
}

func TestOutranksUnknownRole(t *testing.T) {
	require.False(t, Outranks(models.Role("ROOT"), models.RoleViewer))
	require.False(t, Outranks(models.RoleOwner, models.Role("")))
}
