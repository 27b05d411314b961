package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// DefaultContextKey is where CurrentUserMiddleware stores claims
const DefaultContextKey = "user"

// envKeys maps the process environment onto config keys
var envKeys = map[string]string{
	"JWT_KEY":         "auth.signing_key",
	"PORT":            "server.port",
	"NODE_ENV":        "server.node_env",
	"APP_ENV":         "server.environment",
	"DATABASE_DRIVER": "persistence.driver",
	"DATABASE_URL":    "persistence.dsn",
	"LOG_LEVEL":       "log.level",
	"LOG_FORMAT":      "log.format",
}

// flagKeys maps CLI flag names onto config keys
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"env":          "server.environment",
	"mount-path":   "server.mount_path",
	"db-driver":    "persistence.driver",
	"db-dsn":       "persistence.dsn",
	"ping-retries": "persistence.ping_retries",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"hash-cost":    "auth.hash_cost",
	"use-hashid":   "auth.use_hashid",
	"metrics":      "metrics.enabled",
}

type ServerConfig struct {
	Addr        string `koanf:"addr"`
	Port        string `koanf:"port"`
	MountPath   string `koanf:"mount_path"`
	Environment string `koanf:"environment"`
	// NodeEnv is read when Environment is unset
	NodeEnv string `koanf:"node_env"`
}

type AuthConfig struct {
	SigningKey string `koanf:"signing_key"`
	// RetiredSigningKeys still verify sessions but never sign new ones
	RetiredSigningKeys []string `koanf:"retired_signing_keys"`

	Issuer          string   `koanf:"issuer"`
	Audience        []string `koanf:"audience"`
	TokenExpiration int      `koanf:"token_expiration"`
	ContextKey      string   `koanf:"context_key"`
	CookieName      string   `koanf:"cookie_name"`
	HashAlgorithm   string   `koanf:"hash_algorithm"`
	HashCost        int      `koanf:"hash_cost"`
	UseHashid       bool     `koanf:"use_hashid"`
}

type PersistenceSettings struct {
	Driver      string `koanf:"driver"`
	DSN         string `koanf:"dsn"`
	PingRetries int    `koanf:"ping_retries"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ServiceConfig is the full process configuration
type ServiceConfig struct {
	Server      ServerConfig        `koanf:"server"`
	Auth        AuthConfig          `koanf:"auth"`
	Persistence PersistenceSettings `koanf:"persistence"`
	Log         LogConfig           `koanf:"log"`
	Metrics     MetricsConfig       `koanf:"metrics"`
}

var (
	_ Config            = (*ServiceConfig)(nil)
	_ PersistenceConfig = (*ServiceConfig)(nil)
)

// DefaultConfigValues are loaded before any other source
func DefaultConfigValues() map[string]any {
	return map[string]any{
		"server.addr":              ":3000",
		"server.mount_path":        "/api/users",
		"auth.issuer":              "",
		"auth.token_expiration":    0,
		"auth.context_key":         DefaultContextKey,
		"auth.cookie_name":         DefaultCookieName,
		"auth.hash_algorithm":      HashAlgorithmBcrypt,
		"auth.hash_cost":           0,
		"auth.use_hashid":          false,
		"persistence.driver":       DriverSQLite,
		"persistence.dsn":          "file:authsvc.db?cache=shared",
		"persistence.ping_retries": 5,
		"log.level":                "info",
		"log.format":               "text",
		"metrics.enabled":          true,
		"metrics.path":             "/metrics",
	}
}

// LoadConfig resolves configuration from, in increasing priority: defaults,
// the YAML file at path, the process environment and changed flags.
// Both path and flags are optional.
func LoadConfig(path string, flags *pflag.FlagSet) (*ServiceConfig, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(DefaultConfigValues()), nil); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load config defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to load config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		return envKeys[s]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load config from environment")
	}

	// server.port rewrites server.addr below the flag layer, so --addr still wins
	if port := strings.TrimSpace(k.String("server.port")); port != "" {
		addr := mapProvider{"server.addr": ":" + strings.TrimPrefix(port, ":")}
		if err := k.Load(addr, nil); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to apply server port")
		}
	}

	if flags != nil {
		flagProvider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(flagProvider, nil); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to load config from flags")
		}
	}

	cfg := &ServiceConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to decode config")
	}

	cfg.normalize()
	return cfg, nil
}

func (c *ServiceConfig) normalize() {
	if strings.TrimSpace(c.Server.Environment) == "" {
		c.Server.Environment = c.Server.NodeEnv
	}
	c.Server.Environment = strings.ToLower(strings.TrimSpace(c.Server.Environment))
	if c.Server.Environment == "" {
		c.Server.Environment = EnvProduction
	}
	if c.Server.MountPath == "" {
		c.Server.MountPath = "/api/users"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = DefaultCookieName
	}
	if c.Auth.ContextKey == "" {
		c.Auth.ContextKey = DefaultContextKey
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks the startup preconditions
func (c *ServiceConfig) Validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("JWT_KEY must be defined", errors.CategoryBadInput).
			WithTextCode(TextCodeMissingSigningKey)
	}
	return nil
}

func (c *ServiceConfig) GetSigningKey() string    { return c.Auth.SigningKey }
func (c *ServiceConfig) GetIssuer() string        { return c.Auth.Issuer }
func (c *ServiceConfig) GetAudience() []string    { return c.Auth.Audience }
func (c *ServiceConfig) GetTokenExpiration() int  { return c.Auth.TokenExpiration }
func (c *ServiceConfig) GetContextKey() string    { return c.Auth.ContextKey }
func (c *ServiceConfig) GetCookieName() string    { return c.Auth.CookieName }
func (c *ServiceConfig) GetHashAlgorithm() string { return c.Auth.HashAlgorithm }
func (c *ServiceConfig) GetHashCost() int         { return c.Auth.HashCost }
func (c *ServiceConfig) GetUseHashid() bool       { return c.Auth.UseHashid }
func (c *ServiceConfig) GetMountPath() string     { return c.Server.MountPath }
func (c *ServiceConfig) GetDriver() string        { return c.Persistence.Driver }
func (c *ServiceConfig) GetDSN() string           { return c.Persistence.DSN }
func (c *ServiceConfig) GetPingRetries() int      { return c.Persistence.PingRetries }

// GetSecureCookies is false only in test and development
func (c *ServiceConfig) GetSecureCookies() bool {
	switch c.Server.Environment {
	case EnvTest, EnvDevelopment:
		return false
	default:
		return true
	}
}

// mapProvider feeds a flat map of dotted keys to koanf
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes", errors.CategoryInternal)
}

func (m mapProvider) Read() (map[string]any, error) {
	return unflatten(m), nil
}

func unflatten(flat map[string]any) map[string]any {
	out := map[string]any{}
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out
}
