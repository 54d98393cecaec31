package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer implements ports.TokenIssuer with RS256.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
}

type accessClaims struct {
	jwt.RegisteredClaims
	Provider string `json:"provider,omitempty"` // sign-in method: google, github, password
	Role     string `json:"role,omitempty"`     // role resolved at issue time
}

func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer, audience string) *TokenIssuer {
	return &TokenIssuer{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		audience:   audience,
	}
}

func (t *TokenIssuer) IssueAccessToken(userID, provider, role string, expiresInSeconds int64) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresInSeconds) * time.Second)),
		},
		Provider: provider,
		Role:     role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(t.privateKey)
}

func (t *TokenIssuer) ValidateAccessToken(tokenString string) (userID, provider, role string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.publicKey, nil
	})
	if err != nil {
		return "", "", "", err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return "", "", "", errors.New("invalid token claims")
	}
	return claims.Subject, claims.Provider, claims.Role, nil
}
