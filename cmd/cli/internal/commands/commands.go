package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgresstore "github.com/wolfeidau/teamhub/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// PostgresFlags selects the database the maintenance commands operate on.
type PostgresFlags struct {
	ConnString string `help:"PostgreSQL connection string" required:"" env:"POSTGRES_CONNECTION_STRING"`
}

func (p *PostgresFlags) connect(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
		ConnString: p.ConnString,
		MaxConns:   4,
		MinConns:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}
