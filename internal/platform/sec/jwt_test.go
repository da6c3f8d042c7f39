// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-app/solara/internal/platform/sec"
)

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService([]byte(strings.Repeat("k", 32)), "solara.test")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies issue/parse of a valid access token.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t)

	signed, jti, err := service.GenerateAccessToken("user-1", "member", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := service.ParseToken(signed)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "solara.test", claims.Issuer)
}

/*
TestTokenService_Expired verifies that an expired token parses to an error,
not a panic.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTokenService(t)

	signed, _, err := service.GenerateAccessToken("user-1", "member", -1*time.Minute)
	require.NoError(t, err)

	_, err = service.ParseToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_WrongSecret verifies signature enforcement across services.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	service := newTokenService(t)
	other, err := sec.NewTokenService([]byte(strings.Repeat("x", 32)), "solara.test")
	require.NoError(t, err)

	signed, _, err := service.GenerateAccessToken("user-1", "member", 15*time.Minute)
	require.NoError(t, err)

	_, err = other.ParseToken(signed)
	assert.Error(t, err)
}

/*
TestTokenService_Garbage verifies that malformed input is a routine error.
*/
func TestTokenService_Garbage(t *testing.T) {
	service := newTokenService(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.ParseToken(token)
		assert.Error(t, err)
	}
}

/*
TestTokenService_UniqueJTI verifies each issued token has a distinct jti.
*/
func TestTokenService_UniqueJTI(t *testing.T) {
	service := newTokenService(t)

	_, first, err := service.GenerateAccessToken("user-1", "member", time.Minute)
	require.NoError(t, err)
	_, second, err := service.GenerateAccessToken("user-1", "member", time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
