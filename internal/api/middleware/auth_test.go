package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
)

type stubResolver struct {
	user *domain.User
	err  error

	gotIdentity string
	gotEmail    string
}

func (s *stubResolver) GetOrCreate(_ context.Context, identity, email string) (*domain.User, error) {
	s.gotIdentity = identity
	s.gotEmail = email
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func captureIdentity(identity *string, user **domain.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetIdentity(r.Context()); ok {
			*identity = id
		}
		if u, ok := GetUser(r.Context()); ok {
			*user = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityMiddleware_AnonymousPassThrough(t *testing.T) {
	var identity string
	var user *domain.User
	handler := NewIdentityMiddleware(&stubResolver{}, zap.NewNop()).Handler(captureIdentity(&identity, &user))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, identity)
	assert.Nil(t, user)
}

func TestIdentityMiddleware_ResolvesHeaderToken(t *testing.T) {
	resolver := &stubResolver{user: &domain.User{Identity: "sub-123", Email: "dev@example.com"}}

	var identity string
	var user *domain.User
	handler := NewIdentityMiddleware(resolver, zap.NewNop()).Handler(captureIdentity(&identity, &user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Identity-Token", "sub-123:dev@example.com")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sub-123", identity)
	assert.Equal(t, "sub-123", resolver.gotIdentity)
	assert.Equal(t, "dev@example.com", resolver.gotEmail)
	require.NotNil(t, user)
	assert.Equal(t, "sub-123", user.Identity)
}

func TestIdentityMiddleware_BearerToken(t *testing.T) {
	resolver := &stubResolver{user: &domain.User{Identity: "sub-456"}}

	var identity string
	var user *domain.User
	handler := NewIdentityMiddleware(resolver, zap.NewNop()).Handler(captureIdentity(&identity, &user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sub-456")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "sub-456", identity)
	assert.Empty(t, resolver.gotEmail)
}

func TestIdentityMiddleware_ResolverErrorFailsRequest(t *testing.T) {
	resolver := &stubResolver{err: errors.New("db down")}
	handler := NewIdentityMiddleware(resolver, zap.NewNop()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Identity-Token", "sub-123")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIdentityMiddleware_NilResolverCarriesIdentityOnly(t *testing.T) {
	var identity string
	var user *domain.User
	handler := NewIdentityMiddleware(nil, zap.NewNop()).Handler(captureIdentity(&identity, &user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Identity-Token", "sub-123")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sub-123", identity)
	assert.Nil(t, user)
}

func TestRequireUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("without user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireUser(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("with user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), ContextKeyUser, &domain.User{Identity: "sub-123"})

		rec := httptest.NewRecorder()
		RequireUser(next).ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestParseIdentityToken(t *testing.T) {
	tests := []struct {
		token        string
		wantIdentity string
		wantEmail    string
	}{
		{"sub:a@b.com", "sub", "a@b.com"},
		{"sub", "sub", ""},
		{":a@b.com", ":a@b.com", ""},
	}

	for _, tt := range tests {
		identity, email := parseIdentityToken(tt.token)
		assert.Equal(t, tt.wantIdentity, identity)
		assert.Equal(t, tt.wantEmail, email)
	}
}
