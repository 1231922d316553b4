package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Имена JWT claims
const (
	jwtClaimSubject = "sub"
	jwtClaimEmail   = "email"
	jwtClaimName    = "name"
	jwtClaimRole    = "role"

	roleAdmin = "admin"
)

var ErrNoIdentity = errors.New("identity not found in context")

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func GetIdentityFromContext(ctx context.Context) (models.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(models.Identity)
	if !ok || identity.Subject == "" {
		return models.Identity{}, ErrNoIdentity
	}
	return identity, nil
}

func claimString(claims jwt.MapClaims, name string) string {
	v, ok := claims[name].(string)
	if !ok {
		return ""
	}
	return v
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
