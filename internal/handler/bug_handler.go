package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bugtrack/internal/auth"
	"bugtrack/internal/errors"
	"bugtrack/internal/model"
	"bugtrack/internal/service"
)

// BugHandler handles bug endpoints.
type BugHandler struct {
	bugService service.BugService
}

// NewBugHandler creates a new bug handler.
func NewBugHandler(bugService service.BugService) *BugHandler {
	return &BugHandler{bugService: bugService}
}

// CreateBugRequest represents a bug report request.
type CreateBugRequest struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Status           string            `json:"status"`
	Priority         string            `json:"priority"`
	Project          string            `json:"project"`
	StepsToReproduce []string          `json:"stepsToReproduce"`
	Environment      model.Environment `json:"environment"`
}

// UpdateBugRequest represents a partial bug update; absent fields are left
// unchanged.
type UpdateBugRequest struct {
	Title            *string            `json:"title"`
	Description      *string            `json:"description"`
	Status           *string            `json:"status"`
	Priority         *string            `json:"priority"`
	Project          *string            `json:"project"`
	StepsToReproduce *[]string          `json:"stepsToReproduce"`
	Environment      *model.Environment `json:"environment"`
}

// Create godoc
// @Summary Report a new bug
// @Tags bugs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBugRequest true "Bug data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /bugs [post]
func (h *BugHandler) Create(c echo.Context) error {
	var req CreateBugRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	user, ok := auth.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "Access denied. No token provided.",
			Code:  "NO_TOKEN",
		})
	}

	bug, err := h.bugService.Create(c.Request().Context(), user.ID, service.CreateBugInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		Priority:         req.Priority,
		Project:          req.Project,
		StepsToReproduce: req.StepsToReproduce,
		Environment:      req.Environment,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Bug reported",
		"bug":     bug,
	})
}

// List godoc
// @Summary List bugs, newest first
// @Tags bugs
// @Produce json
// @Param mine query bool false "Restrict to the caller's bugs (authenticated only)"
// @Success 200 {array} model.Bug
// @Failure 500 {object} errors.ErrorResponse
// @Router /bugs [get]
func (h *BugHandler) List(c echo.Context) error {
	mine := c.QueryParam("mine") == "true"

	var viewerID *uuid.UUID
	if user, ok := auth.CurrentUser(c); ok {
		viewerID = &user.ID
	}

	bugs, err := h.bugService.List(c.Request().Context(), viewerID, mine)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, bugs)
}

// GetByID godoc
// @Summary Get a bug by ID
// @Tags bugs
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {object} model.Bug
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /bugs/{id} [get]
func (h *BugHandler) GetByID(c echo.Context) error {
	bug, err := h.bugService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, bug)
}

// Update godoc
// @Summary Update a bug
// @Tags bugs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bug ID"
// @Param request body UpdateBugRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /bugs/{id} [put]
func (h *BugHandler) Update(c echo.Context) error {
	var req UpdateBugRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	user, ok := auth.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "Access denied. No token provided.",
			Code:  "NO_TOKEN",
		})
	}

	bug, err := h.bugService.Update(c.Request().Context(), user.ID, c.Param("id"), service.UpdateBugInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		Priority:         req.Priority,
		Project:          req.Project,
		StepsToReproduce: req.StepsToReproduce,
		Environment:      req.Environment,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Bug updated",
		"bug":     bug,
	})
}

// Delete godoc
// @Summary Delete a bug
// @Tags bugs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bug ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /bugs/{id} [delete]
func (h *BugHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "Access denied. No token provided.",
			Code:  "NO_TOKEN",
		})
	}

	if err := h.bugService.Delete(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Bug deleted",
	})
}
