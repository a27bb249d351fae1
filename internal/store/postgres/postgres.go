// Package postgres provides PostgreSQL implementations of the teamhub stores.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/teamhub/internal/store"
)

// Open connects to PostgreSQL, optionally applies migrations and returns the
// stores sharing one pool. Close the pool when done.
func Open(ctx context.Context, cfg *PoolConfig, autoMigrate bool) (store.Stores, *pgxpool.Pool, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return store.Stores{}, nil, err
	}

	if autoMigrate {
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return store.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return NewStores(pool), pool, nil
}

// NewStores wires every store to pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Organizations: NewOrganizationStore(pool),
		Members:       NewMemberStore(pool),
		Projects:      NewProjectStore(pool),
		Tasks:         NewTaskStore(pool),
		BillingPlans:  NewBillingPlanStore(pool),
		APIKeys:       NewAPIKeyStore(pool),
	}
}
