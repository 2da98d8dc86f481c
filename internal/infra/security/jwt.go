package security

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lexaid/moderation-service/internal/infra/config"
)

// ErrInvalidToken indicates the token failed signature or claim validation.
var ErrInvalidToken = errors.New("jwt: invalid token")

// ErrExpiredToken indicates the token is past its expiry.
var ErrExpiredToken = errors.New("jwt: token expired")

// AdminClaims carries the admin identity and roles extracted from a verified token.
type AdminClaims struct {
	Subject string
	Roles   []string
}

type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HMAC-signed admin tokens issued by the platform gateway.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier constructs a verifier from auth settings.
func NewTokenVerifier(cfg config.AuthSettings) (*TokenVerifier, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt: secret is not configured")
	}

	return &TokenVerifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}, nil
}

// Verify parses and validates a bearer token, returning the admin claims.
func (v *TokenVerifier) Verify(tokenString string) (*AdminClaims, error) {
	claims := &tokenClaims{}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &AdminClaims{
		Subject: claims.Subject,
		Roles:   claims.Roles,
	}, nil
}
