package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-authsvc"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"JWT_KEY", "PORT", "NODE_ENV", "APP_ENV", "DATABASE_DRIVER", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := auth.LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "/api/users", cfg.GetMountPath())
	assert.Equal(t, auth.EnvProduction, cfg.Server.Environment)
	assert.True(t, cfg.GetSecureCookies())
	assert.Equal(t, auth.DefaultCookieName, cfg.GetCookieName())
	assert.Equal(t, 0, cfg.GetTokenExpiration())
	assert.Equal(t, auth.DriverSQLite, cfg.GetDriver())
	assert.True(t, cfg.Metrics.Enabled)

	assert.Error(t, cfg.Validate(), "no signing key")
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_KEY", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/auth")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := auth.LoadConfig("", nil)
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "s3cret", cfg.GetSigningKey())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, auth.EnvTest, cfg.Server.Environment)
	assert.False(t, cfg.GetSecureCookies())
	assert.Equal(t, "postgres", cfg.GetDriver())
	assert.Equal(t, "postgres://localhost/auth", cfg.GetDSN())
}

func TestLoadConfig_AppEnvWinsOverNodeEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "test")
	t.Setenv("APP_ENV", "Development")

	cfg, err := auth.LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, auth.EnvDevelopment, cfg.Server.Environment)
	assert.False(t, cfg.GetSecureCookies())
}

func TestLoadConfig_FileEnvFlagsPriority(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":4000"
  mount_path: /users
auth:
  signing_key: from-file
  issuer: authsvc
  audience: [clients]
  token_expiration: 24
log:
  level: debug
`), 0o600))

	t.Setenv("JWT_KEY", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("addr", ":3000", "")
	flags.Bool("metrics", true, "")
	require.NoError(t, flags.Parse([]string{"--log-level=warn", "--metrics=false"}))

	cfg, err := auth.LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Addr, "unchanged flag keeps file value")
	assert.Equal(t, "/users", cfg.GetMountPath())
	assert.Equal(t, "from-env", cfg.GetSigningKey())
	assert.Equal(t, "authsvc", cfg.GetIssuer())
	assert.Equal(t, []string{"clients"}, cfg.GetAudience())
	assert.Equal(t, 24, cfg.GetTokenExpiration())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := auth.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadConfig_AddrFlagBeatsPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":3000", "")
	require.NoError(t, flags.Parse([]string{"--addr=127.0.0.1:9000"}))

	cfg, err := auth.LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	unchanged := pflag.NewFlagSet("test", pflag.ContinueOnError)
	unchanged.String("addr", ":3000", "")
	require.NoError(t, unchanged.Parse(nil))

	cfg, err = auth.LoadConfig("", unchanged)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr, "PORT applies when --addr is not set")
}
