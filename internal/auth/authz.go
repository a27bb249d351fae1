package auth

import "github.com/wolfeidau/teamhub/internal/models"

// roleRank orders the organization roles. Unknown roles have no rank.
var roleRank = map[models.Role]int{
	models.RoleViewer: 1,
	models.RoleMember: 2,
	models.RoleAdmin:  3,
	models.RoleOwner:  4,
}

// Outranks reports whether actor strictly outranks target in the order
// VIEWER < MEMBER < ADMIN < OWNER. Unknown roles never outrank and are never outranked.
func Outranks(actor, target models.Role) bool {
	a, ok := roleRank[actor]
	if !ok {
		return false
	}
	t, ok := roleRank[target]
	if !ok {
		return false
	}
	return a > t
}
