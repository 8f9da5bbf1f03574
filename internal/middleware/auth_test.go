package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartprep/interview-server-go/internal/model"
	"github.com/smartprep/interview-server-go/internal/util"
)

type mockUserRepo struct {
	findByTokenHashFunc func(ctx context.Context, tokenHash string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	if m.findByTokenHashFunc != nil {
		return m.findByTokenHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func TestAuthMiddleware(t *testing.T) {
	testUser := &model.User{ID: "user-123", Name: "Test User"}

	newHandler := func(repo *mockUserRepo) (http.Handler, *string) {
		var seenUserID string
		mw := NewAuthMiddleware(repo)
		handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUserID = GetUserID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		return handler, &seenUserID
	}

	t.Run("valid token attaches the user", func(t *testing.T) {
		repo := &mockUserRepo{
			findByTokenHashFunc: func(ctx context.Context, tokenHash string) (*model.User, error) {
				assert.Equal(t, util.HashToken("valid-token"), tokenHash)
				return testUser, nil
			},
		}
		handler, seenUserID := newHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-123", *seenUserID)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		handler, _ := newHandler(&mockUserRepo{})

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		handler, _ := newHandler(&mockUserRepo{})

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		handler, _ := newHandler(&mockUserRepo{})

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set("Authorization", "Bearer unknown-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("database failure is a 500", func(t *testing.T) {
		repo := &mockUserRepo{
			findByTokenHashFunc: func(ctx context.Context, tokenHash string) (*model.User, error) {
				return nil, errors.New("connection refused")
			},
		}
		handler, _ := newHandler(repo)

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("returns nil without a user", func(t *testing.T) {
		assert.Nil(t, GetUser(context.Background()))
		assert.Equal(t, "", GetUserID(context.Background()))
	})

	t.Run("returns the stored user", func(t *testing.T) {
		user := &model.User{ID: "user-1"}
		ctx := context.WithValue(context.Background(), UserContextKey, user)
		assert.Equal(t, user, GetUser(ctx))
		assert.Equal(t, "user-1", GetUserID(ctx))
	})
}
