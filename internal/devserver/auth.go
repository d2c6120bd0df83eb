package devserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "identity"

// identity is the caller resolved from a signed token. The dev server does
// no user management; whatever the token claims is who you are.
type identity struct {
	userID      uuid.UUID
	displayName string
	email       string
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid token"}}`, http.StatusUnauthorized)
			return
		}

		who, err := parseToken(strings.TrimPrefix(header, "Bearer "), s.cfg.JWTSecret)
		if err != nil {
			http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"Invalid or expired token"}}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, who)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getIdentity(ctx context.Context) identity {
	return ctx.Value(identityKey).(identity)
}

func parseToken(tokenStr, secret string) (identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = jwt.ErrTokenInvalidClaims
		}
		return identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return identity{}, err
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return identity{}, err
	}

	who := identity{userID: userID}
	if name, ok := claims["name"].(string); ok {
		who.displayName = name
	}
	if email, ok := claims["email"].(string); ok {
		who.email = email
	}
	return who, nil
}
