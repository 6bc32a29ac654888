package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bugtrack/internal/auth"
	"bugtrack/internal/errors"
	"bugtrack/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	gate *auth.Gate,
	authHandler *handler.AuthHandler,
	bugHandler *handler.BugHandler,
	postHandler *handler.PostHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = httpErrorHandler

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Auth routes
	authGroup := e.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, gate.Middleware(auth.Require))

	// Bug routes: reads personalize when a token is present, writes require one
	bugs := e.Group("/bugs")
	bugs.GET("", bugHandler.List, gate.Middleware(auth.Optional))
	bugs.GET("/:id", bugHandler.GetByID, gate.Middleware(auth.Optional))
	bugs.POST("", bugHandler.Create, gate.Middleware(auth.Require))
	bugs.PUT("/:id", bugHandler.Update, gate.Middleware(auth.Require))
	bugs.DELETE("/:id", bugHandler.Delete, gate.Middleware(auth.Require))

	// Post routes
	posts := e.Group("/posts")
	posts.GET("", postHandler.List, gate.Middleware(auth.Optional))
	posts.GET("/:id", postHandler.GetByID, gate.Middleware(auth.Optional))
	posts.POST("", postHandler.Create, gate.Middleware(auth.Require))
	posts.PUT("/:id", postHandler.Update, gate.Middleware(auth.Require))
	posts.DELETE("/:id", postHandler.Delete, gate.Middleware(auth.Require))
}

// httpErrorHandler normalizes framework-level errors to the API's error shape.
// Handlers write their own error responses; this mostly covers unroutable
// paths and panics surfaced by the Recover middleware.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		_ = c.JSON(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	if he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed {
		_ = c.JSON(http.StatusNotFound, errors.ErrorResponse{
			Error: "Route not found",
			Code:  "ROUTE_NOT_FOUND",
		})
		return
	}

	message := http.StatusText(he.Code)
	if msg, ok := he.Message.(string); ok {
		message = msg
	}
	_ = c.JSON(he.Code, errors.ErrorResponse{Error: message})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
