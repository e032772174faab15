package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/fanmarket/shop/internal/models"
	"github.com/fanmarket/shop/internal/mykafka"
	"github.com/fanmarket/shop/internal/token"
)

type ReviewHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *ReviewHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// Create rejects a second review for the same (user, product) pair.
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	productID, err := pathID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var count int64
	if err := h.DB.Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "you have already reviewed this product"})
	}

	var req struct {
		Rating uint   `json:"rating" validate:"required,gte=1,lte=5"`
		Text   string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"detail": err.Error()}})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": ValidationErrors(err)})
	}

	review := models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Text:      req.Text,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"detail": err.Error()}})
	}

	h.publish(c, map[string]interface{}{
		"type":      "review_created",
		"userID":    userID,
		"productID": productID,
		"rating":    review.Rating,
	})

	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListByProduct(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var reviews []models.Review
	if err := h.DB.Where("product_id = ?", productID).Order("id ASC").Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reviews)
}
