package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahir-ride/api/internal/domain"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) MessageEnvelope {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHTTPErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest, "AUTH_001"},
		{domain.ErrCodeExpired, http.StatusBadRequest, "AUTH_002"},
		{domain.ErrCodeInvalid, http.StatusBadRequest, "AUTH_003"},
		{domain.ErrUserSuspended, http.StatusForbidden, "AUTH_004"},
		{domain.ErrTokenInvalid, http.StatusUnauthorized, "AUTH_005"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "AUTH_006"},
		{domain.ErrAlreadyRegistered, http.StatusBadRequest, "AUTH_007"},
		{domain.ErrUserNotFound, http.StatusNotFound, "AUTH_008"},
		{domain.ErrNotVerified, http.StatusForbidden, "AUTH_009"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH_010"},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "AUTH_011"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			httpError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode(t, rec).ErrorCode)
		})
	}
}

func TestHTTPErrorMapsWrappedDomainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	httpError(rec, domain.ErrTokenInvalid.WithMessage("signature check failed"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "AUTH_005", env.ErrorCode)
	assert.Equal(t, "signature check failed", env.Error)
}

func TestHTTPErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	httpError(rec, errors.New("pq: connection refused on 10.1.2.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "internal server error", env.Error)
	assert.NotContains(t, env.Error, "10.1.2.3")
}
