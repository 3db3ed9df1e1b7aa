package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

// Context keys
type contextKey string

const (
	ContextKeyIdentity contextKey = "identity"
	ContextKeyUser     contextKey = "user"
)

// GetIdentity extracts the identity subject from context.
func GetIdentity(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(string)
	return identity, ok
}

// GetUser extracts the resolved user from context. Anonymous requests have
// no user.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*domain.User)
	return user, ok
}

// UserResolver resolves an identity subject to a persisted user.
type UserResolver interface {
	GetOrCreate(ctx context.Context, identity, email string) (*domain.User, error)
}

// IdentityMiddleware resolves the optional identity token. Requests without
// a token proceed anonymously; a token that can't be resolved fails the
// request rather than silently downgrading it.
type IdentityMiddleware struct {
	users  UserResolver
	logger *zap.Logger
}

// NewIdentityMiddleware creates an identity middleware. users may be nil when
// no database is configured; tokens then carry identity through context only.
func NewIdentityMiddleware(users UserResolver, logger *zap.Logger) *IdentityMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityMiddleware{users: users, logger: logger}
}

// Handler returns the middleware handler.
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, email := parseIdentityToken(token)
		ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)

		if m.users != nil {
			user, err := m.users.GetOrCreate(ctx, identity, email)
			if err != nil {
				m.logger.Error("resolving identity failed", zap.Error(err))
				writeAuthError(w, http.StatusInternalServerError, domain.ErrCodeInternal, "Could not resolve identity")
				return
			}
			ctx = context.WithValue(ctx, ContextKeyUser, user)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects requests that did not present a resolvable identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "Identity token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken pulls the identity token from request headers.
func extractToken(r *http.Request) string {
	if token := r.Header.Get("X-Identity-Token"); token != "" {
		return token
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}

// parseIdentityToken splits a "subject:email" token issued by the frontend
// auth layer. Tokens without an email part are just a subject.
func parseIdentityToken(token string) (identity, email string) {
	if idx := strings.IndexByte(token, ':'); idx > 0 {
		return token[:idx], token[idx+1:]
	}
	return token, ""
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
