package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerCmdValidate(t *testing.T) {
	valid := func() ServerCmd {
		return ServerCmd{
			JWTSecret:   "secret",
			StoreType:   "memory",
			Notifier:    "log",
			MaxBulkSize: 50,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *ServerCmd)
		wantErr string
	}{
		{name: "valid", mutate: func(c *ServerCmd) {}},
		{name: "missing secret", mutate: func(c *ServerCmd) { c.JWTSecret = "" }, wantErr: "JWT secret is required"},
		{name: "unsigned without secret", mutate: func(c *ServerCmd) {
			c.JWTSecret = ""
			c.AllowUnsignedTokens = true
		}, wantErr: "JWT secret is required"},
		{name: "unsigned with secret", mutate: func(c *ServerCmd) { c.AllowUnsignedTokens = true }},
		{name: "cert without key", mutate: func(c *ServerCmd) { c.TLSCert = "cert.pem" }, wantErr: "must be provided together"},
		{name: "postgres without conn string", mutate: func(c *ServerCmd) { c.StoreType = "postgres" }, wantErr: "connection string is required"},
		{name: "webhook without url", mutate: func(c *ServerCmd) { c.Notifier = "webhook" }, wantErr: "webhook URL is required"},
		{name: "zero bulk size", mutate: func(c *ServerCmd) { c.MaxBulkSize = 0 }, wantErr: "max bulk size must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := valid()
			tt.mutate(&cmd)

			err := cmd.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPoolConfigFromFlags(t *testing.T) {
	flags := PostgresStoreFlags{ConnString: "postgres://localhost/teamhub", MaxConns: 8, MinConns: 1}

	cfg := flags.poolConfig()
	require.Equal(t, "postgres://localhost/teamhub", cfg.ConnString)
	require.Equal(t, int32(8), cfg.MaxConns)
	require.Equal(t, int32(1), cfg.MinConns)
}
