package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/chris743/db-api/internal/auth/service TokenGenerator

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chris743/db-api/config"
	autherror "github.com/chris743/db-api/internal/errors"
)

type TokenGenerator interface {
	GenerateAccessToken(userID int, username, role string) (string, time.Time, error)
	GenerateRefreshToken() (string, error)
	VerifyAccessToken(tokenString string) (*JWTCustomClaims, error)
	HashRefreshToken(raw string) string
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// TokenService issues HS256 access tokens and opaque refresh tokens.
// Configuration fields are set once at startup and never mutated.
type TokenService struct {
	secretKey          []byte
	issuer             string
	audience           string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secretKey:          []byte(cfg.SecretKey),
		issuer:             cfg.Issuer,
		audience:           cfg.Audience,
		accessTokenExpiry:  time.Duration(cfg.AccessTokenMinutes) * time.Minute,
		refreshTokenExpiry: time.Duration(cfg.RefreshTokenDays) * 24 * time.Hour,
	}
}

// GenerateAccessToken signs a short-lived token carrying the user's identity
// claims. The returned time is the token's expiry.
func (ts *TokenService) GenerateAccessToken(userID int, username, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.accessTokenExpiry)

	claims := JWTCustomClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    ts.issuer,
			Audience:  jwt.ClaimStrings{ts.audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// GenerateRefreshToken returns a 256-bit random value, base64 encoded. It
// carries no claims: it is only a lookup key into the session store.
func (ts *TokenService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashRefreshToken returns the value persisted for a refresh token. The raw
// token is never stored.
func (ts *TokenService) HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// VerifyAccessToken checks the signature, issuer, audience and expiry of the
// given token with zero clock-skew tolerance. Every failure collapses into
// ErrInvalidToken so callers cannot tell expired from tampered.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secretKey, nil
	}, jwt.WithIssuer(ts.issuer), jwt.WithAudience(ts.audience))

	if err != nil || !token.Valid {
		return nil, autherror.ErrInvalidToken
	}

	return claims, nil
}

func (ts *TokenService) AccessTokenTTL() time.Duration {
	return ts.accessTokenExpiry
}

func (ts *TokenService) RefreshTokenTTL() time.Duration {
	return ts.refreshTokenExpiry
}
