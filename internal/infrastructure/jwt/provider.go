package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/bahir-ride/api/internal/config"
	"github.com/bahir-ride/api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer   = "bahir-ride-api"
	Audience = "bahir-ride-app"
)

// Claims holds the JWT payload fields shared by access and refresh tokens.
type Claims struct {
	UserID       string      `json:"user_id"`
	Role         domain.Role `json:"role"`
	TokenVersion int         `json:"token_version"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs. Access and refresh tokens use
// distinct secrets so compromise of one cannot forge the other, and a token
// signed for one purpose never validates against the other verifier.
type Provider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &Provider{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL(),
		refreshTTL:    cfg.RefreshTokenTTL(),
	}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (p *Provider) AccessTTL() time.Duration { return p.accessTTL }

// SignAccess issues a short-lived access token.
func (p *Provider) SignAccess(userID string, role domain.Role, tokenVersion int) (string, error) {
	return p.sign(userID, role, tokenVersion, p.accessSecret, p.accessTTL)
}

// SignRefresh issues a long-lived refresh token.
func (p *Provider) SignRefresh(userID string, role domain.Role, tokenVersion int) (string, error) {
	return p.sign(userID, role, tokenVersion, p.refreshSecret, p.refreshTTL)
}

func (p *Provider) sign(userID string, role domain.Role, tokenVersion int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		Role:         role,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccess validates an access token's signature, issuer, audience,
// algorithm and expiry.
func (p *Provider) VerifyAccess(tokenStr string) (*Claims, error) {
	return p.verify(tokenStr, p.accessSecret)
}

// VerifyRefresh validates a refresh token. An access token presented here
// fails on the signature check.
func (p *Provider) VerifyRefresh(tokenStr string) (*Claims, error) {
	return p.verify(tokenStr, p.refreshSecret)
}

func (p *Provider) verify(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if _, err := domain.ParseRole(string(claims.Role)); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
