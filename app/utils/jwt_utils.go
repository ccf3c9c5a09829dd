package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is the issuer stamped on identity tokens
const TokenIssuer = "matchcall"

var (
	// ErrEmptyToken is returned when no token string was supplied
	ErrEmptyToken = errors.New("token string cannot be empty")

	// ErrEmptySecret is returned when a signing secret is missing
	ErrEmptySecret = errors.New("signing secret cannot be empty")
)

// IdentityClaims represents the claims carried by an identity (session) token
type IdentityClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// CallClaims represents the claims of a token handed to the video-call SDK
type CallClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateIdentityToken signs an identity token for the given user
func GenerateIdentityToken(secret []byte, userID, name, avatar string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if userID == "" {
		return "", fmt.Errorf("user ID cannot be empty")
	}

	now := time.Now()
	claims := IdentityClaims{
		UserID: userID,
		Name:   name,
		Avatar: avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign identity token: %w", err)
	}
	return tokenString, nil
}

// VerifyIdentityToken verifies and decodes an identity token
func VerifyIdentityToken(secret []byte, tokenString string) (*IdentityClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(TokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid identity token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("identity token has no user ID")
	}
	return claims, nil
}

// SignCallToken signs a user token for the video-call provider with the
// provider's API secret
func SignCallToken(secret []byte, userID string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	claims := CallClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign call token: %w", err)
	}
	return token, nil
}
