package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-authsvc"
)

const testSigningKey = "test-signing-key"

func testConfig() *auth.ServiceConfig {
	return &auth.ServiceConfig{
		Server: auth.ServerConfig{
			Addr:        ":0",
			MountPath:   "/api/users",
			Environment: auth.EnvTest,
		},
		Auth: auth.AuthConfig{
			SigningKey:    testSigningKey,
			ContextKey:    "user",
			CookieName:    auth.DefaultCookieName,
			HashAlgorithm: auth.HashAlgorithmBcrypt,
			HashCost:      bcrypt.MinCost,
		},
		Persistence: auth.PersistenceSettings{
			Driver: auth.DriverSQLite,
			DSN:    "file::memory:",
		},
		Log: auth.LogConfig{Level: "debug", Format: "text"},
		Metrics: auth.MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// newTestDB opens a private in memory database with the accounts table created
func newTestDB(t *testing.T) (*bun.DB, auth.RepositoryManager) {
	t.Helper()

	ctx := context.Background()
	cfg := testConfig()

	db, err := auth.OpenDB(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := auth.NewRepositoryManager(db, auth.NewBcryptHasher(bcrypt.MinCost))
	require.NoError(t, repo.Validate())
	require.NoError(t, repo.Migrate(ctx))

	return db, repo
}
