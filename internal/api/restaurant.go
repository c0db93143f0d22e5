package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"restaurant-service/internal/entity"
	"restaurant-service/internal/search"
	"restaurant-service/internal/service"
)

type RestaurantHandler struct {
	restaurantService *service.RestaurantService
}

// NewRestaurantHandler creates a new instance of RestaurantHandler
func NewRestaurantHandler(restaurantService *service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

func restaurantID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// Create creates a restaurant --> POST /api/restaurants
func (h *RestaurantHandler) Create(c echo.Context) error {
	in := entity.RestaurantInput{}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": msgInvalidPayload})
	}

	restaurant, err := h.restaurantService.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, restaurant)
}

// List returns all restaurants --> GET /api/restaurants
func (h *RestaurantHandler) List(c echo.Context) error {
	restaurants, err := h.restaurantService.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, restaurants)
}

// Get returns one restaurant --> GET /api/restaurants/:id
func (h *RestaurantHandler) Get(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid ID"})
	}

	restaurant, err := h.restaurantService.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

// Update replaces a restaurant --> PUT /api/restaurants/:id
func (h *RestaurantHandler) Update(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid ID"})
	}

	in := entity.RestaurantInput{}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": msgInvalidPayload})
	}

	restaurant, err := h.restaurantService.Update(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

// Delete removes a restaurant --> DELETE /api/restaurants/:id
func (h *RestaurantHandler) Delete(c echo.Context) error {
	id, err := restaurantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid ID"})
	}

	if err := h.restaurantService.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Search filters restaurants by name, city, state and type --> GET /api/restaurants/search
func (h *RestaurantHandler) Search(c echo.Context) error {
	filters := search.Filters{
		Name:  c.QueryParam("name"),
		City:  c.QueryParam("city"),
		State: c.QueryParam("state"),
		Type:  c.QueryParam("type"),
	}

	restaurants, err := h.restaurantService.Search(c.Request().Context(), filters)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, restaurants)
}
