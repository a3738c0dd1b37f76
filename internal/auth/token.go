package auth

import (
	"errors"
	"fmt"

	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "athena"

// Claims are carried by the ID tokens issued at sign-in.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (p *Provider) issueToken(user models.User) (string, error) {
	now := p.now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.opts.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.opts.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyIDToken validates a token issued by SignIn and returns its claims.
func (p *Provider) VerifyIDToken(raw string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return p.opts.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		message := "The ID token is invalid."
		if errors.Is(err, jwt.ErrTokenExpired) {
			message = "The ID token has expired."
		}
		return nil, &Error{Code: CodeInvalidIDToken, Message: message, Err: err}
	}

	return claims, nil
}
