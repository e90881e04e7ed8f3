package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/habitnest-api/app/observability/metrics"
	"github.com/FACorreiaa/habitnest-api/internal/api"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

type contextKey string

const UserKey contextKey = "user"

const notAuthorizedMessage = "Not authorized to access this route"

// Authenticate rejects requests without a valid bearer token for an existing
// principal, and otherwise attaches that principal to the request context.
// A missing or malformed header never reaches the store.
func Authenticate(logger *slog.Logger, verifier TokenVerifier, store PrincipalStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				l.WarnContext(ctx, "Missing or malformed Authorization header")
				reject(w, r, "missing_token")
				return
			}

			principalID, err := verifier.Verify(token)
			if err != nil {
				l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
				reject(w, r, "invalid_token")
				return
			}

			user, err := store.GetUserByID(ctx, principalID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					l.WarnContext(ctx, "Token principal no longer exists", slog.String("userID", principalID.String()))
					reject(w, r, "unknown_principal")
					return
				}
				l.ErrorContext(ctx, "Failed to resolve token principal", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusInternalServerError, "Server Error")
				return
			}

			l.DebugContext(ctx, "Authentication successful", slog.String("userID", user.ID.String()))
			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

// bearerToken extracts the token from "Bearer <token>". The scheme is matched
// case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(w http.ResponseWriter, r *http.Request, reason string) {
	metrics.Get().AuthFailuresTotal.Add(r.Context(), 1, metric.WithAttributes(attribute.String("reason", reason)))
	api.ErrorResponse(w, r, http.StatusUnauthorized, notAuthorizedMessage)
}

func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func GetUserFromContext(ctx context.Context) (*types.User, bool) {
	user, ok := ctx.Value(UserKey).(*types.User)
	return user, ok && user != nil
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}
