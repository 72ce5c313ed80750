package identity

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskboard/taskboard/internal/taskerr"
)

type sessionClaims struct {
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// SessionResolver accepts HMAC-signed session tokens minted by the identity
// service. The subject claim is the stable user id.
type SessionResolver struct {
	secret []byte
}

func NewSessionResolver(secret string) *SessionResolver {
	return &SessionResolver{secret: []byte(secret)}
}

func (r *SessionResolver) Resolve(ctx context.Context, credential string) (Principal, error) {
	if credential == "" {
		return Principal{}, taskerr.ErrInvalidCredentials
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, taskerr.ErrInvalidCredentials
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, taskerr.ErrInvalidCredentials
	}

	if claims.Subject == "" || claims.DisplayName == "" {
		return Principal{}, taskerr.ErrInvalidCredentials
	}

	return Principal{UserID: claims.Subject, DisplayName: claims.DisplayName}, nil
}
