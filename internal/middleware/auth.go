package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"taskManager/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoUser = errors.New("no authenticated user")

type AuthConfig struct {
	Secret []byte
	Issuer string
}

// Authenticate requires an HS256 bearer token whose subject is the user id.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := parseToken(parser, cfg.Secret, r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn("HTTP: authentication failed",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided or are invalid.")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func parseToken(parser *jwt.Parser, secret []byte, header string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return uuid.Nil, errors.New("missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return id, nil
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIdKey, id)
}

func GetUserID(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctx.Value(UserIdKey).(uuid.UUID); ok {
		return id, nil
	}
	return uuid.Nil, ErrNoUser
}
