package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/fanmarket/shop/internal/models"
	"github.com/fanmarket/shop/internal/token"
)

type UserHandler struct {
	DB *gorm.DB
}

func (h *UserHandler) GetData(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateData partially updates the caller's profile. Omitted fields keep
// their value.
func (h *UserHandler) UpdateData(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Email      *string `json:"email"       validate:"omitempty,email"`
		Address    *string `json:"address"`
		City       *string `json:"city"`
		Country    *string `json:"country"`
		PostalCode *int    `json:"postal_code"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"detail": err.Error()}})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": ValidationErrors(err)})
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"detail": err.Error()}})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetOrders(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.Preload("Items").Where("user_id = ?", userID).Order("id ASC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}
