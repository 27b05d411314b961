package auth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/goliatone/go-authsvc"
)

func TestCurrentUserContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.CurrentUserFromContext(ctx)
	assert.False(t, ok)

	user := &auth.CurrentUser{ID: "acc-1", Email: "a@b.com"}
	got, ok := auth.CurrentUserFromContext(auth.WithCurrentUser(ctx, user))
	assert.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = auth.CurrentUserFromContext(auth.WithCurrentUser(ctx, nil))
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.GetClaims(ctx)
	assert.False(t, ok)

	claims := &auth.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-1"}, Email: "a@b.com"}
	got, ok := auth.GetClaims(auth.WithClaimsContext(ctx, claims))
	assert.True(t, ok)
	assert.Equal(t, "acc-1", got.UserID())
}

func TestContextEnricherAdapter(t *testing.T) {
	claims := &auth.SessionClaims{UID: "acc-1", Email: "a@b.com"}

	ctx := auth.ContextEnricherAdapter(context.Background(), claims)

	user, ok := auth.CurrentUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, &auth.CurrentUser{ID: "acc-1", Email: "a@b.com"}, user)

	_, ok = auth.GetClaims(ctx)
	assert.True(t, ok)
}
