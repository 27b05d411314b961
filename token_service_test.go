package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-authsvc"
)

func newTokenService(t *testing.T, expiration int) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService([]byte(testSigningKey), expiration, "authsvc", jwt.ClaimStrings{"clients"}, nil)
	require.NoError(t, err)
	return ts
}

func TestNewTokenService_RequiresSigningKey(t *testing.T) {
	_, err := auth.NewTokenService(nil, 0, "", nil, nil)
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)

	cfg := testConfig()
	cfg.Auth.SigningKey = ""
	_, err = auth.NewTokenServiceFromConfig(cfg, nil)
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	ts := newTokenService(t, 0)

	token, err := ts.Issue("acc-1", "a@b.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.UserID())
	assert.Equal(t, "acc-1", claims.Subject())
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "authsvc", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.False(t, claims.IssuedAt().IsZero())
	assert.True(t, claims.Expires().IsZero(), "no exp claim without a configured expiration")
}

func TestTokenService_ExpirationClaim(t *testing.T) {
	ts := newTokenService(t, 2)

	token, err := ts.Issue("acc-1", "a@b.com")
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.Expires(), time.Minute)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	claims := &auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-1",
			Issuer:    "authsvc",
			Audience:  jwt.ClaimStrings{"clients"},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UID: "acc-1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	_, err = newTokenService(t, 0).Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenService_RejectsTampering(t *testing.T) {
	ts := newTokenService(t, 0)
	token, err := ts.Issue("acc-1", "a@b.com")
	require.NoError(t, err)

	other, err := auth.NewTokenService([]byte("another-key"), 0, "authsvc", jwt.ClaimStrings{"clients"}, nil)
	require.NoError(t, err)
	forged, err := other.Issue("acc-1", "a@b.com")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "acc-1", "iss": "authsvc"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":       "not.a.token",
		"empty":         "",
		"wrong key":     forged,
		"alg none":      noneToken,
		"truncated sig": token[:len(token)-4],
	}

	for name, candidate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Verify(candidate)
			assert.ErrorIs(t, err, auth.ErrTokenMalformed)
			assert.True(t, auth.IsMalformedError(err))
		})
	}
}

func TestTokenService_IssuerAndAudienceChecked(t *testing.T) {
	issuer, err := auth.NewTokenService([]byte(testSigningKey), 0, "someone-else", jwt.ClaimStrings{"clients"}, nil)
	require.NoError(t, err)
	token, err := issuer.Issue("acc-1", "a@b.com")
	require.NoError(t, err)

	_, err = newTokenService(t, 0).Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)

	audience, err := auth.NewTokenService([]byte(testSigningKey), 0, "authsvc", jwt.ClaimStrings{"admin"}, nil)
	require.NoError(t, err)
	token, err = audience.Issue("acc-1", "a@b.com")
	require.NoError(t, err)

	_, err = newTokenService(t, 0).Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}

func TestTokenService_RequiresSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "authsvc", Audience: jwt.ClaimStrings{"clients"}},
		Email:            "a@b.com",
	}).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	_, err = newTokenService(t, 0).Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}
