// Package identity consumes the bearer tokens minted by the external
// authentication service. Token issuance, credential storage, and refresh
// flows all live outside this system; we only verify the signature and read
// the asserted user id and role.
package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"

	"motorcover/internal/platform/middleware"
)

// Claims mirrors the claim set the identity service signs into its tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens against the shared signing key.
type Verifier struct {
	signingKey []byte
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// ValidateToken implements middleware.TokenValidator.
func (v *Verifier) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}

	return &middleware.TokenClaims{UserID: userID, Role: claims.Role}, nil
}
