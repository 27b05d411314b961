package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-authsvc"
)

func TestAccount_JSONNeverCarriesSecret(t *testing.T) {
	acc := &auth.Account{ID: uuid.New(), Email: "a@b.com", PasswordHash: "$2a$04$secret"}

	raw, err := json.Marshal(acc)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	raw, err = json.Marshal(acc.Public())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+acc.ID.String()+`","email":"a@b.com"}`, string(raw))
}

func TestAccount_SetPassword(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	acc := &auth.Account{Email: "a@b.com"}

	changed, err := acc.SetPassword(hasher, "pw12")
	require.NoError(t, err)
	assert.True(t, changed)
	first := acc.PasswordHash

	changed, err = acc.SetPassword(hasher, "pw12")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, acc.PasswordHash)

	changed, err = acc.SetPassword(hasher, "pw34")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, first, acc.PasswordHash)

	_, err = acc.SetPassword(hasher, "")
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)
}

func TestPublicAccounts(t *testing.T) {
	out := auth.PublicAccounts([]*auth.Account{{Email: "a@b.com", PasswordHash: "x"}, nil})
	require.Len(t, out, 2)
	assert.Equal(t, "a@b.com", out[0].Email)
	assert.Equal(t, auth.PublicAccount{}, out[1])

	assert.NotNil(t, auth.PublicAccounts(nil))
}

func TestCurrentUserFromClaims(t *testing.T) {
	assert.Nil(t, auth.CurrentUserFromClaims(nil))

	user := auth.CurrentUserFromClaims(&auth.SessionClaims{UID: "acc-1", Email: "a@b.com"})
	assert.Equal(t, &auth.CurrentUser{ID: "acc-1", Email: "a@b.com"}, user)
}
