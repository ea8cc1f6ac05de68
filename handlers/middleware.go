package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/permissions"
	"github.com/camden-git/electoralbackend/repository"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the key used to store the user object in the request context.
	UserContextKey ContextKey = "user"
)

const (
	msgTokenMissing  = "Token no proporcionado"
	msgTokenInvalid  = "Token inválido o expirado"
	msgForbidden     = "No tienes permiso para realizar esta acción"
	msgUserNotInCtxt = "No se pudo identificar al usuario"
)

// AuthMiddleware verifies the bearer token, reloads the account and rejects
// unknown or expired accounts. The user is stored in the request context.
func AuthMiddleware(tokens *TokenManager, userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, msgTokenMissing, nil)
				return
			}

			userID, err := tokens.Parse(tokenString)
			if err != nil {
				logger.Debug("rejected token", zap.Error(err))
				writeError(w, http.StatusUnauthorized, msgTokenInvalid, nil)
				return
			}

			user, err := userRepo.GetByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					logger.Error("failed to load token user", zap.Uint("user_id", userID), zap.Error(err))
				}
				writeError(w, http.StatusUnauthorized, msgTokenInvalid, nil)
				return
			}
			if !user.IsActive(time.Now()) {
				writeError(w, http.StatusUnauthorized, msgTokenInvalid, nil)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// CurrentUser returns the account stored by AuthMiddleware.
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// RequirePermission rejects requests whose role lacks permission. It must run
// after AuthMiddleware.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	if !permissions.IsValidPermissionKey(permission) {
		panic("unknown permission key: " + permission)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, msgUserNotInCtxt, nil)
				return
			}
			if !user.HasPermission(permission) {
				writeError(w, http.StatusForbidden, msgForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger writes one structured access log line per request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
