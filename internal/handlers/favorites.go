package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fanmarket/shop/internal/models"
	"github.com/fanmarket/shop/internal/mykafka"
	"github.com/fanmarket/shop/internal/token"
)

type FavoriteHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *FavoriteHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *FavoriteHandler) findProduct(c echo.Context) (*models.Product, error) {
	id, err := pathID(c, "product_id")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "product does not exist")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &product, nil
}

func (h *FavoriteHandler) List(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var products []models.Product
	if err := h.DB.Model(&models.Product{}).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ?", userID).
		Order("products.id ASC").
		Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"favorites": products})
}

// Add is idempotent: favoriting twice leaves a single membership row.
func (h *FavoriteHandler) Add(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	product, err := h.findProduct(c)
	if err != nil {
		return err
	}

	fav := models.Favorite{UserID: userID, ProductID: product.ID}
	if err := h.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":      "favorite_added",
		"userID":    userID,
		"productID": product.ID,
	})

	return c.JSON(http.StatusCreated, echo.Map{"status": "product added to favorites"})
}

// Remove never errors for a product the user hasn't favorited.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	product, err := h.findProduct(c)
	if err != nil {
		return err
	}

	if err := h.DB.Where("user_id = ? AND product_id = ?", userID, product.ID).
		Delete(&models.Favorite{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":      "favorite_removed",
		"userID":    userID,
		"productID": product.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"status": "product removed from favorites"})
}
