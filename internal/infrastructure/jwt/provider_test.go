package jwtinfra

import (
	"testing"
	"time"

	"github.com/bahir-ride/api/internal/config"
	"github.com/bahir-ride/api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	cfg := &config.Config{
		JWTAccessSecret:   "access-secret-for-tests",
		JWTRefreshSecret:  "refresh-secret-for-tests",
		JWTExpiryDays:     7,
		RefreshExpiryDays: 30,
	}
	p, err := NewProvider(cfg)
	require.NoError(t, err)
	return p
}

func TestNewProvider_RejectsMissingOrEqualSecrets(t *testing.T) {
	_, err := NewProvider(&config.Config{})
	assert.Error(t, err)

	_, err = NewProvider(&config.Config{JWTAccessSecret: "same", JWTRefreshSecret: "same"})
	assert.Error(t, err)
}

func TestProvider_AccessRoundTrip(t *testing.T) {
	p := newTestProvider(t)

	token, err := p.SignAccess("u1", domain.RolePassenger, 1)
	require.NoError(t, err)

	claims, err := p.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RolePassenger, claims.Role)
	assert.Equal(t, 1, claims.TokenVersion)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestProvider_CrossUseRejected(t *testing.T) {
	p := newTestProvider(t)

	access, err := p.SignAccess("u1", domain.RoleDriver, 1)
	require.NoError(t, err)
	refresh, err := p.SignRefresh("u1", domain.RoleDriver, 1)
	require.NoError(t, err)

	_, err = p.VerifyRefresh(access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = p.VerifyAccess(refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestProvider_WrongIssuerAudienceRejected(t *testing.T) {
	p := newTestProvider(t)

	forge := func(issuer, audience string) string {
		claims := Claims{
			UserID: "u1",
			Role:   domain.RolePassenger,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Audience:  jwt.ClaimStrings{audience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret-for-tests"))
		require.NoError(t, err)
		return s
	}

	_, err := p.VerifyAccess(forge("someone-else", Audience))
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = p.VerifyAccess(forge(Issuer, "another-app"))
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestProvider_ExpiredRejected(t *testing.T) {
	p := newTestProvider(t)

	claims := Claims{
		UserID: "u1",
		Role:   domain.RolePassenger,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret-for-tests"))
	require.NoError(t, err)

	_, err = p.VerifyAccess(expired)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestProvider_UnknownRoleRejected(t *testing.T) {
	p := newTestProvider(t)

	claims := Claims{
		UserID: "u1",
		Role:   "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret-for-tests"))
	require.NoError(t, err)

	_, err = p.VerifyAccess(tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
