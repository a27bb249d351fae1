package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wolfeidau/teamhub/internal/auth"
	"github.com/wolfeidau/teamhub/internal/logger"
	"github.com/wolfeidau/teamhub/internal/notify"
	"github.com/wolfeidau/teamhub/internal/server"
	"github.com/wolfeidau/teamhub/internal/store"
	memorystore "github.com/wolfeidau/teamhub/internal/store/memory"
	postgresstore "github.com/wolfeidau/teamhub/internal/store/postgres"
	"github.com/wolfeidau/teamhub/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen  string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"TEAMHUB_LISTEN"`
	TLSCert string `help:"path to TLS cert file" default:"" env:"TEAMHUB_TLS_CERT"`
	TLSKey  string `help:"path to TLS key file" default:"" env:"TEAMHUB_TLS_KEY"`

	// Authentication
	JWTSecret           string `help:"HMAC secret used to verify access tokens" env:"JWT_SECRET"`
	JWTIssuer           string `help:"required token issuer" default:"teamhub-api" env:"TEAMHUB_JWT_ISSUER"`
	AllowUnsignedTokens bool   `help:"also accept legacy unsigned tokens (development only, --jwt-secret is still required)" default:"false" env:"TEAMHUB_ALLOW_UNSIGNED_TOKENS"`

	// HTTP behaviour
	CORSOrigins     []string      `help:"allowed CORS origins" default:"*" env:"TEAMHUB_CORS_ORIGINS"`
	MaxBulkSize     int           `help:"maximum projects per bulk archive or restore" default:"50" env:"TEAMHUB_MAX_BULK_SIZE"`
	BulkConcurrency int           `help:"projects processed in parallel by bulk operations" default:"10" env:"TEAMHUB_BULK_CONCURRENCY"`
	RequestTimeout  time.Duration `help:"per request timeout" default:"30s" env:"TEAMHUB_REQUEST_TIMEOUT"`
	Tracing         bool          `help:"enable tracing" default:"false" env:"TEAMHUB_TRACING"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TEAMHUB_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	// Notifications
	Notifier      string               `help:"where domain events are delivered (log, redis, webhook or none)" default:"log" env:"TEAMHUB_NOTIFIER" enum:"log,redis,webhook,none"`
	NotifyTimeout time.Duration        `help:"timeout for a single notification delivery" default:"10s" env:"TEAMHUB_NOTIFY_TIMEOUT"`
	Redis         notify.RedisConfig   `embed:"" prefix:"redis-" envprefix:"TEAMHUB_REDIS_"`
	Webhook       notify.WebhookConfig `embed:"" prefix:"webhook-" envprefix:"TEAMHUB_WEBHOOK_"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TEAMHUB_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}
}

// Validate is called by kong after flags are parsed.
func (c *ServerCmd) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT secret is required (--jwt-secret or JWT_SECRET)")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("TLS certificate and key must be provided together (--tls-cert and --tls-key)")
	}
	if c.StoreType == "postgres" && c.PostgresStore.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	if c.Notifier == "webhook" && c.Webhook.URL == "" {
		return errors.New("webhook URL is required when --notifier=webhook")
	}
	if c.MaxBulkSize < 1 {
		return fmt.Errorf("max bulk size must be positive, got %d", c.MaxBulkSize)
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{ServiceName: "teamhub-server", Version: globals.Version})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, closeStores, err := c.openStores(ctx, log)
	if err != nil {
		return err
	}
	defer closeStores()

	notifier, closeNotifier, err := c.newNotifier(ctx)
	if err != nil {
		return err
	}
	defer closeNotifier()

	var events notify.Emitter = notify.Discard{}
	var async *notify.Async
	if notifier != nil {
		async = notify.NewAsync(notifier, c.NotifyTimeout)
		events = async
	}
	log.Info().Str("notifier", c.Notifier).Msg("Notifications configured")

	if c.AllowUnsignedTokens {
		log.Warn().Msg("Unsigned tokens are accepted (--allow-unsigned-tokens). This should only be used in development!")
	}
	verifier := auth.NewJWTVerifier([]byte(c.JWTSecret), c.JWTIssuer, c.AllowUnsignedTokens)

	srv := server.NewServer(stores, verifier, events, server.Config{
		MaxBulkSize:     c.MaxBulkSize,
		BulkConcurrency: c.BulkConcurrency,
		RequestTimeout:  c.RequestTimeout,
		CORSOrigins:     c.CORSOrigins,
		Tracing:         c.Tracing,
	})

	httpServer := configureHTTPServer(c.Listen, srv.Handler(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", c.Listen).Bool("tls", c.TLSCert != "").Msg("Starting HTTP server")

		var err error
		if c.TLSCert != "" {
			err = httpServer.ListenAndServeTLS(c.TLSCert, c.TLSKey)
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.RequestTimeout+5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}

		if async != nil {
			if err := async.Close(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Dropped pending notifications")
			}
		}
		return nil
	})

	return g.Wait()
}

func (c *ServerCmd) openStores(ctx context.Context, log zerolog.Logger) (store.Stores, func(), error) {
	switch c.StoreType {
	case "postgres":
		stores, pool, err := postgresstore.Open(ctx, c.PostgresStore.poolConfig(), c.PostgresStore.AutoMigrate)
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to open postgres stores: %w", err)
		}
		log.Info().Bool("auto_migrate", c.PostgresStore.AutoMigrate).Msg("Using PostgreSQL stores with shared connection pool")
		return stores, pool.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil
	}
}

// newNotifier returns nil when notifications are disabled.
func (c *ServerCmd) newNotifier(ctx context.Context) (notify.Notifier, func(), error) {
	switch c.Notifier {
	case "redis":
		n, err := notify.NewRedisNotifier(ctx, c.Redis)
		if err != nil {
			return nil, nil, err
		}
		return notify.Multi{notify.LogNotifier{}, n}, func() { _ = n.Close() }, nil
	case "webhook":
		n := notify.NewWebhookNotifier(c.Webhook, nil)
		return notify.Multi{notify.LogNotifier{}, n}, func() {}, nil
	case "none":
		return nil, func() {}, nil
	default:
		return notify.LogNotifier{}, func() {}, nil
	}
}
