package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wolfeidau/teamhub/internal/logger"
	"github.com/wolfeidau/teamhub/internal/seed"
	postgresstore "github.com/wolfeidau/teamhub/internal/store/postgres"
)

// SeedCmd loads a YAML fixture into PostgreSQL.
type SeedCmd struct {
	File     string        `arg:"" help:"Fixture file" type:"existingfile"`
	Migrate  bool          `help:"Apply migrations before loading" default:"true" negatable:""`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	fixture, err := seed.Parse(f)
	if err != nil {
		return err
	}

	pool, err := c.Postgres.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if c.Migrate {
		if err := postgresstore.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	res, err := seed.Load(ctx, postgresstore.NewStores(pool), fixture)
	if err != nil {
		return err
	}

	log.Info().Str("file", c.File).Int("organizations", res.Organizations).Msg("Seed complete")
	return nil
}
