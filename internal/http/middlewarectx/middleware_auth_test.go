package middlewarectx_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
)

type mockParser struct {
	ParseFunc func(tokenStr string) (*token.AuthContext, error)
}

func (m *mockParser) ParseToken(tokenStr string) (*token.AuthContext, error) {
	return m.ParseFunc(tokenStr)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		parser := &mockParser{
			ParseFunc: func(tokenStr string) (*token.AuthContext, error) {
				require.Equal(t, "good-token", tokenStr)
				return &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}, nil
			},
		}

		var seen *token.AuthContext
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, ok := middlewarectx.AuthFromContext(r.Context())
			require.True(t, ok)
			seen = auth
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()

		middlewarectx.AuthMiddleware(parser, makeLogger())(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "tenant-a", seen.TenantID)
	})

	t.Run("missing header", func(t *testing.T) {
		parser := &mockParser{
			ParseFunc: func(string) (*token.AuthContext, error) {
				t.Fatal("parser should not be called without a header")
				return nil, nil
			},
		}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		w := httptest.NewRecorder()

		middlewarectx.AuthMiddleware(parser, makeLogger())(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "missing or invalid authorization header")
	})

	t.Run("invalid token", func(t *testing.T) {
		parser := &mockParser{
			ParseFunc: func(string) (*token.AuthContext, error) {
				return nil, errors.New("token is expired")
			},
		}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()

		middlewarectx.AuthMiddleware(parser, makeLogger())(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or expired token")
	})
}
