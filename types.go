package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Logger is satisfied by *slog.Logger
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetTokenExpiration() int
	GetContextKey() string
	GetCookieName() string
	GetSecureCookies() bool
	GetHashAlgorithm() string
	GetHashCost() int
	GetUseHashid() bool
	GetMountPath() string
}

// PasswordHasher derives and checks credential secrets.
// Implementations embed the salt in the returned string.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
	Verify(hash, password string) bool
}

// Accounts is the user record store
type Accounts interface {
	FindByEmail(ctx context.Context, email string, opts ...FindOption) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID, opts ...FindOption) (*Account, error)
	Create(ctx context.Context, email, password string) (*Account, error)
	SetPassword(ctx context.Context, id uuid.UUID, password string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
}

// TokenIssuer creates and checks session tokens
type TokenIssuer interface {
	Issue(accountID, email string) (string, error)
	Verify(token string) (*SessionClaims, error)
}

type defLogger struct{}

func (defLogger) Debug(msg string, args ...any) { slog.Default().Debug(msg, args...) }
func (defLogger) Info(msg string, args ...any)  { slog.Default().Info(msg, args...) }
func (defLogger) Warn(msg string, args ...any)  { slog.Default().Warn(msg, args...) }
func (defLogger) Error(msg string, args ...any) { slog.Default().Error(msg, args...) }

func resolveLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
