package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/teamhub/internal/logger"
	postgresstore "github.com/wolfeidau/teamhub/internal/store/postgres"
)

// MigrateCmd applies pending schema migrations.
type MigrateCmd struct {
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	pool, err := c.Postgres.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgresstore.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
