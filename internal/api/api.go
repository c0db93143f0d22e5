package api

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"restaurant-service/internal/auth"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/service"
	"restaurant-service/internal/validation"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	msgDuplicateCNPJ      = "Restaurant with this CNPJ already exists"
	msgNotFound           = "Resource not found"
	msgInvalidCredentials = "Invalid email or password"
	msgMissingToken       = "Missing or invalid token"
	msgInternal           = "Internal server error"
	msgInvalidPayload     = "Invalid request payload"
)

// RegisterRoutes mounts every endpoint under /api. Writes and /auth/me
// require a bearer token signed with secret.
func RegisterRoutes(e *echo.Echo, restaurants *RestaurantHandler, users *AuthHandler, secret []byte) {
	e.HTTPErrorHandler = ErrorHandler

	requireToken := echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &jwt.RegisteredClaims{}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": msgMissingToken})
		},
	})

	g := e.Group("/api")

	g.POST("/auth/register", users.Register)
	g.POST("/auth/login", users.Login)
	g.GET("/auth/me", users.Me, requireToken)

	g.GET("/restaurants", restaurants.List)
	g.POST("/restaurants", restaurants.Create, requireToken)
	g.GET("/restaurants/search", restaurants.Search)
	g.GET("/restaurants/:id", restaurants.Get)
	g.PUT("/restaurants/:id", restaurants.Update, requireToken)
	g.DELETE("/restaurants/:id", restaurants.Delete, requireToken)

	g.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "restaurant-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
}

// ErrorHandler renders errors that escape handlers (unknown routes, bad
// methods, panics recovered by middleware) in the {"message": ...} shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch {
		case code == http.StatusNotFound:
			msg = msgNotFound
		case code < http.StatusInternalServerError:
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"message": msg})
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error writing error response")
	}
}

// writeError maps domain errors to status codes. Anything unrecognized is
// a 500 without detail.
func writeError(c echo.Context, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "Validation error",
			"errors":  verr.Fields,
		})
	case errors.Is(err, repository.ErrDuplicateBusinessID):
		return c.JSON(http.StatusBadRequest, map[string]string{"message": msgDuplicateCNPJ})
	case errors.Is(err, repository.ErrDuplicateUsername):
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Username already exists"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Email already registered"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"message": msgNotFound})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": msgInvalidCredentials})
	case errors.Is(err, auth.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": msgMissingToken})
	default:
		logger.Error().Err(err).Str("path", c.Path()).Msg("Internal error")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": msgInternal})
	}
}
