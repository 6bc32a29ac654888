package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"bugtrack/internal/model"
)

// MockUserResolver is a mock implementation of UserResolver.
type MockUserResolver struct {
	mock.Mock
}

func (m *MockUserResolver) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// runGate sends a request through the gate middleware into a handler that
// reports whether an identity was attached.
func runGate(t *testing.T, policy Policy, authorization string, resolver *MockUserResolver) *httptest.ResponseRecorder {
	t.Helper()

	jwtService := NewJWTService("test-secret")
	gate := NewGate(jwtService, resolver)

	e := echo.New()
	handler := gate.Middleware(policy)(func(c echo.Context) error {
		if user, ok := CurrentUser(c); ok {
			return c.JSON(http.StatusOK, map[string]string{"username": user.Username})
		}
		return c.JSON(http.StatusOK, map[string]string{"username": ""})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler(c)
	assert.NoError(t, err)
	return rec
}

func issueToken(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := NewJWTService("test-secret").GenerateToken(user)
	assert.NoError(t, err)
	return token
}

func TestGate_RequireAttachesUser(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "testuser", Email: "test@example.com"}
	resolver := new(MockUserResolver)
	resolver.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	rec := runGate(t, Require, "Bearer "+issueToken(t, user), resolver)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "testuser")
	resolver.AssertExpectations(t)
}

func TestGate_RequireRejections(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "testuser"}

	tests := []struct {
		name          string
		authorization string
		setupMock     func(*MockUserResolver)
		wantStatus    int
		wantError     string
	}{
		{
			name:          "no token",
			authorization: "",
			setupMock:     func(m *MockUserResolver) {},
			wantStatus:    http.StatusUnauthorized,
			wantError:     "Access denied. No token provided.",
		},
		{
			name:          "invalid token",
			authorization: "Bearer invalid-token",
			setupMock:     func(m *MockUserResolver) {},
			wantStatus:    http.StatusUnauthorized,
			wantError:     "Invalid token.",
		},
		{
			name:          "token signed with another key",
			authorization: "Bearer " + mustSign(t, "other-secret", user),
			setupMock:     func(m *MockUserResolver) {},
			wantStatus:    http.StatusUnauthorized,
			wantError:     "Invalid token.",
		},
		{
			name:          "user no longer exists",
			authorization: "Bearer " + issueToken(t, user),
			setupMock: func(m *MockUserResolver) {
				m.On("FindByID", mock.Anything, user.ID).Return(nil, gorm.ErrRecordNotFound)
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "User not found.",
		},
		{
			name:          "store failure",
			authorization: "Bearer " + issueToken(t, user),
			setupMock: func(m *MockUserResolver) {
				m.On("FindByID", mock.Anything, user.ID).Return(nil, errors.New("connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server error during authentication.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(MockUserResolver)
			tt.setupMock(resolver)

			rec := runGate(t, Require, tt.authorization, resolver)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantError)
			resolver.AssertExpectations(t)
		})
	}
}

func TestGate_OptionalNeverRejects(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "testuser"}

	tests := []struct {
		name          string
		authorization string
		setupMock     func(*MockUserResolver)
		wantUsername  string
	}{
		{
			name:          "no token proceeds anonymously",
			authorization: "",
			setupMock:     func(m *MockUserResolver) {},
			wantUsername:  `""`,
		},
		{
			name:          "invalid token proceeds anonymously",
			authorization: "Bearer invalid-token",
			setupMock:     func(m *MockUserResolver) {},
			wantUsername:  `""`,
		},
		{
			name:          "store failure proceeds anonymously",
			authorization: "Bearer " + issueToken(t, user),
			setupMock: func(m *MockUserResolver) {
				m.On("FindByID", mock.Anything, user.ID).Return(nil, errors.New("connection refused"))
			},
			wantUsername: `""`,
		},
		{
			name:          "valid token attaches identity",
			authorization: "Bearer " + issueToken(t, user),
			setupMock: func(m *MockUserResolver) {
				m.On("FindByID", mock.Anything, user.ID).Return(user, nil)
			},
			wantUsername: "testuser",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(MockUserResolver)
			tt.setupMock(resolver)

			rec := runGate(t, Optional, tt.authorization, resolver)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantUsername)
			resolver.AssertExpectations(t)
		})
	}
}

func mustSign(t *testing.T, secret string, user *model.User) string {
	t.Helper()
	token, err := NewJWTService(secret).GenerateToken(user)
	assert.NoError(t, err)
	return token
}
