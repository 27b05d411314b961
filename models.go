package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the persisted user record
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"-"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"-"`
}

// PublicAccount is the only account shape written to clients
type PublicAccount struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Public returns the client facing projection
func (a *Account) Public() PublicAccount {
	if a == nil {
		return PublicAccount{}
	}
	return PublicAccount{
		ID:    a.ID.String(),
		Email: a.Email,
	}
}

// HasSecret is false for projections loaded without IncludeSecret
func (a *Account) HasSecret() bool {
	return a != nil && a.PasswordHash != ""
}

// SetPassword re-hashes only when password does not already match the stored hash.
// It reports whether the hash changed.
func (a *Account) SetPassword(hasher PasswordHasher, password string) (bool, error) {
	if a.PasswordHash != "" && hasher.Verify(a.PasswordHash, password) {
		return false, nil
	}

	hash, err := hasher.HashPassword(password)
	if err != nil {
		return false, err
	}

	a.PasswordHash = hash
	return true, nil
}

// PublicAccounts maps a list through Public
func PublicAccounts(accounts []*Account) []PublicAccount {
	out := make([]PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	return out
}

// CurrentUser is the identity attached to a request once its session token verifies
type CurrentUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CurrentUserFromClaims builds the request identity from verified claims
func CurrentUserFromClaims(claims *SessionClaims) *CurrentUser {
	if claims == nil {
		return nil
	}
	return &CurrentUser{
		ID:    claims.UserID(),
		Email: claims.Email,
	}
}
