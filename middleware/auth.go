package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Authenticator проверяет JWT, выданные внешним identity provider (HS256, общий секрет).
type Authenticator struct {
	secret []byte
	issuer string
	admins map[string]struct{}
	logger *slog.Logger
}

// NewAuthenticator: пустой issuer отключает проверку claim "iss".
func NewAuthenticator(secret, issuer string, adminUserIDs []string, logger *slog.Logger) *Authenticator {
	admins := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = struct{}{}
	}
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		admins: admins,
		logger: logger,
	}
}

// ParseToken validates the signature, expiry and issuer and maps the claims to an Identity.
func (a *Authenticator) ParseToken(tokenString string) (models.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, true) {
		return models.Identity{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}

	identity := models.Identity{
		Subject: claimString(claims, jwtClaimSubject),
		Email:   claimString(claims, jwtClaimEmail),
		Name:    claimString(claims, jwtClaimName),
	}
	if identity.Subject == "" {
		return models.Identity{}, fmt.Errorf("%w: missing '%s' claim", ErrInvalidToken, jwtClaimSubject)
	}
	_, listed := a.admins[identity.Subject]
	identity.IsAdmin = listed || claimString(claims, jwtClaimRole) == roleAdmin
	return identity, nil
}

// Authenticate пропускает запрос дальше только с валидным Bearer токеном.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		identity, err := a.ParseToken(tokenString)
		if err != nil {
			a.logger.DebugContext(r.Context(), "token rejected",
				slog.String("path", r.URL.Path), slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin должен стоять после Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := GetIdentityFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !identity.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
