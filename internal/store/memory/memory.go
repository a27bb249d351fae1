// Package memory provides in-memory implementations of the teamhub stores.
package memory

import "github.com/wolfeidau/teamhub/internal/store"

// NewStores returns a fresh set of empty in-memory stores.
func NewStores() store.Stores {
	members := NewMemberStore()
	return store.Stores{
		Organizations: NewOrganizationStore(members),
		Members:       members,
		Projects:      NewProjectStore(),
		Tasks:         NewTaskStore(),
		BillingPlans:  NewBillingPlanStore(),
		APIKeys:       NewAPIKeyStore(),
	}
}
