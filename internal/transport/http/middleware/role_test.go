package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bahir-ride/api/internal/domain"
	jwtinfra "github.com/bahir-ride/api/internal/infrastructure/jwt"
)

func requestWithRole(role domain.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/users/x/status", nil)
	claims := &jwtinfra.Claims{UserID: "user-1", Role: role}
	return req.WithContext(context.WithValue(req.Context(), ClaimsKey, claims))
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	mw := RequireRole(domain.RoleSupport, domain.RoleAdmin)

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, requestWithRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
	mw := RequireRole(domain.RoleAdmin)

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, requestWithRole(domain.RolePassenger))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	mw := RequireRole(domain.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/users/x/status", nil)
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
