// Package session mints and rotates the dual-token session pair.
package session

import (
	"github.com/bahir-ride/api/internal/domain"
	jwtinfra "github.com/bahir-ride/api/internal/infrastructure/jwt"
)

// TokenPair is the client-facing session: a short-lived access token, a
// long-lived refresh token, and the access token's lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service issues token pairs for verified identities and rotates them on
// refresh. Tokens are stateless; Logout is advisory only and revocation
// happens by bumping the identity's token version.
type Service struct {
	tokens *jwtinfra.Provider
}

func NewService(tokens *jwtinfra.Provider) *Service {
	return &Service{tokens: tokens}
}

// Issue mints a fresh pair for the identity.
func (s *Service) Issue(identity *domain.Identity) (*TokenPair, error) {
	return s.mint(identity.ID, identity.Role, identity.TokenVersion)
}

// Rotate verifies a refresh token and issues a new pair for the same
// subject. Both tokens rotate so a stolen refresh token ages out with its
// pair.
func (s *Service) Rotate(refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	return s.mint(claims.UserID, claims.Role, claims.TokenVersion)
}

func (s *Service) mint(userID string, role domain.Role, tokenVersion int) (*TokenPair, error) {
	access, err := s.tokens.SignAccess(userID, role, tokenVersion)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefresh(userID, role, tokenVersion)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
