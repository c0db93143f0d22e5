package api

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"restaurant-service/internal/auth"
	"restaurant-service/internal/entity"
	"restaurant-service/internal/service"
)

type AuthHandler struct {
	userService *service.UserService
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register creates an account --> POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	in := entity.RegisterInput{}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": msgInvalidPayload})
	}

	user, err := h.userService.Register(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for an access token --> POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	in := entity.LoginInput{}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": msgInvalidPayload})
	}

	token, err := h.userService.Login(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"access_token": token})
}

// Me returns the token holder's profile --> GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	token, _ := c.Get("user").(*jwt.Token)
	userID, err := auth.UserIDFromToken(token)
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.userService.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
