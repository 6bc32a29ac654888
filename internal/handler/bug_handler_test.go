package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bugtrack/internal/auth"
	apperrors "bugtrack/internal/errors"
	"bugtrack/internal/model"
	"bugtrack/internal/service"
)

// MockBugService is a mock implementation of service.BugService.
type MockBugService struct {
	mock.Mock
}

func (m *MockBugService) Create(ctx context.Context, reporterID uuid.UUID, input service.CreateBugInput) (*model.Bug, error) {
	args := m.Called(ctx, reporterID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bug), args.Error(1)
}

func (m *MockBugService) List(ctx context.Context, viewerID *uuid.UUID, mine bool) ([]model.Bug, error) {
	args := m.Called(ctx, viewerID, mine)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Bug), args.Error(1)
}

func (m *MockBugService) GetByID(ctx context.Context, id string) (*model.Bug, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bug), args.Error(1)
}

func (m *MockBugService) Update(ctx context.Context, userID uuid.UUID, id string, input service.UpdateBugInput) (*model.Bug, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bug), args.Error(1)
}

func (m *MockBugService) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func newBugContext(method, target, body string, user *model.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(auth.ContextUserKey, user)
	}
	return c, rec
}

func TestBugHandler_Create(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "testuser"}

	t.Run("201 with the created bug", func(t *testing.T) {
		mockService := new(MockBugService)
		mockService.On("Create", mock.Anything, user.ID, mock.AnythingOfType("service.CreateBugInput")).
			Return(&model.Bug{ID: uuid.New(), Title: "Crash on save", ReporterID: user.ID}, nil)

		c, rec := newBugContext(http.MethodPost, "/bugs",
			`{"title":"Crash on save","description":"App crashes when saving","project":"Backend"}`, user)

		h := NewBugHandler(mockService)
		assert.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Bug reported")
		mockService.AssertExpectations(t)
	})

	t.Run("400 on validation failure", func(t *testing.T) {
		mockService := new(MockBugService)
		mockService.On("Create", mock.Anything, user.ID, mock.AnythingOfType("service.CreateBugInput")).
			Return(nil, &apperrors.ValidationError{Messages: []string{"Title is required"}})

		c, rec := newBugContext(http.MethodPost, "/bugs", `{"description":"App crashes when saving"}`, user)

		h := NewBugHandler(mockService)
		assert.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Title is required")
	})
}

func TestBugHandler_List(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "testuser"}

	t.Run("mine is effective only when authenticated", func(t *testing.T) {
		mockService := new(MockBugService)
		mockService.On("List", mock.Anything, &user.ID, true).Return([]model.Bug{{Title: "mine"}}, nil)

		c, rec := newBugContext(http.MethodGet, "/bugs?mine=true", "", user)

		h := NewBugHandler(mockService)
		assert.NoError(t, h.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("anonymous listing returns all", func(t *testing.T) {
		mockService := new(MockBugService)
		mockService.On("List", mock.Anything, (*uuid.UUID)(nil), true).Return([]model.Bug{}, nil)

		c, rec := newBugContext(http.MethodGet, "/bugs?mine=true", "", nil)

		h := NewBugHandler(mockService)
		assert.NoError(t, h.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestBugHandler_GetByID(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{name: "not found", serviceErr: apperrors.ErrBugNotFound, wantStatus: http.StatusNotFound, wantBody: "Bug not found"},
		{name: "malformed id", serviceErr: apperrors.ErrInvalidBugID, wantStatus: http.StatusBadRequest, wantBody: "Invalid bug ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockBugService)
			mockService.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(nil, tt.serviceErr)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/bugs/:id")
			c.SetParamNames("id")
			c.SetParamValues("some-id")

			h := NewBugHandler(mockService)
			assert.NoError(t, h.GetByID(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestBugHandler_Delete(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "testuser"}
	bugID := uuid.New().String()

	t.Run("403 for foreign bugs", func(t *testing.T) {
		mockService := new(MockBugService)
		mockService.On("Delete", mock.Anything, user.ID, bugID).Return(apperrors.ErrNotBugReporter)

		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/bugs/:id")
		c.SetParamNames("id")
		c.SetParamValues(bugID)
		c.Set(auth.ContextUserKey, user)

		h := NewBugHandler(mockService)
		assert.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "your own bugs")
	})

	t.Run("200 for the owner", func(t *testing.T) {
		mockService := new(MockBugService)
		mockService.On("Delete", mock.Anything, user.ID, bugID).Return(nil)

		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/bugs/:id")
		c.SetParamNames("id")
		c.SetParamValues(bugID)
		c.Set(auth.ContextUserKey, user)

		h := NewBugHandler(mockService)
		assert.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Bug deleted")
	})
}
