package service

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris743/db-api/config"
	autherror "github.com/chris743/db-api/internal/errors"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:          "test-secret-key-123",
		Issuer:             "cobblestone-api",
		Audience:           "cobblestone-clients",
		AccessTokenMinutes: 30,
		RefreshTokenDays:   7,
	}
}

func TestNewTokenService(t *testing.T) {
	ts := NewTokenService(testJWTConfig())

	assert.NotNil(t, ts)
	assert.Equal(t, 30*time.Minute, ts.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, ts.RefreshTokenTTL())
}

func TestTokenService_GenerateAccessToken(t *testing.T) {
	tests := []struct {
		name     string
		userID   int
		username string
		role     string
	}{
		{
			name:     "regular user",
			userID:   42,
			username: "alice",
			role:     "user",
		},
		{
			name:     "admin user",
			userID:   1,
			username: "admin",
			role:     "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTokenService(testJWTConfig())

			token, expiresAt, err := ts.GenerateAccessToken(tt.userID, tt.username, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

			claims, err := ts.VerifyAccessToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, "cobblestone-api", claims.Issuer)
			assert.Contains(t, claims.Audience, "cobblestone-clients")
			assert.NotEmpty(t, claims.ID) // jti
			assert.NotNil(t, claims.IssuedAt)
		})
	}
}

func TestTokenService_VerifyAccessToken_Failures(t *testing.T) {
	cfg := testJWTConfig()
	ts := NewTokenService(cfg)

	makeToken := func(cfg config.JWTConfig, expiry time.Duration) string {
		token, _, err := NewTokenService(cfg).GenerateAccessToken(1, "alice", "user")
		require.NoError(t, err)
		if expiry < 0 {
			claims := JWTCustomClaims{
				Username: "alice",
				Role:     "user",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "1",
					Issuer:    cfg.Issuer,
					Audience:  jwt.ClaimStrings{cfg.Audience},
					IssuedAt:  jwt.NewNumericDate(time.Now().Add(expiry - time.Minute)),
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
				},
			}
			expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
			require.NoError(t, err)
			return expired
		}
		return token
	}

	wrongKey := testJWTConfig()
	wrongKey.SecretKey = "a-different-secret"

	wrongIssuer := testJWTConfig()
	wrongIssuer.Issuer = "someone-else"

	wrongAudience := testJWTConfig()
	wrongAudience.Audience = "other-clients"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage token", "not.a.jwt"},
		{"empty token", ""},
		{"wrong signing key", makeToken(wrongKey, 0)},
		{"wrong issuer", makeToken(wrongIssuer, 0)},
		{"wrong audience", makeToken(wrongAudience, 0)},
		{"expired token", makeToken(cfg, -time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ts.VerifyAccessToken(tt.token)
			assert.Nil(t, claims)
			// Every failure collapses into the same error.
			assert.ErrorIs(t, err, autherror.ErrInvalidToken)
		})
	}
}

func TestTokenService_VerifyAccessToken_RejectsNonHMAC(t *testing.T) {
	ts := NewTokenService(testJWTConfig())

	// alg=none style tokens must not pass.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "cobblestone-api",
		Audience:  jwt.ClaimStrings{"cobblestone-clients"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := ts.VerifyAccessToken(unsigned)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, autherror.ErrInvalidToken)
}

func TestTokenService_GenerateRefreshToken(t *testing.T) {
	ts := NewTokenService(testJWTConfig())

	token, err := ts.GenerateRefreshToken()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32) // 256 bits of entropy

	other, err := ts.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestTokenService_HashRefreshToken(t *testing.T) {
	ts := NewTokenService(testJWTConfig())

	raw := "some-refresh-token"
	hashed := ts.HashRefreshToken(raw)

	sum := sha256.Sum256([]byte(raw))
	assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), hashed)
	assert.NotEqual(t, raw, hashed)

	// Deterministic: the stored value must match on later lookups.
	assert.Equal(t, hashed, ts.HashRefreshToken(raw))
}
