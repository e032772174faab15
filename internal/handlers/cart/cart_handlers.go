package cart

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fanmarket/shop/internal/models"
	"github.com/fanmarket/shop/internal/mykafka"
	"github.com/fanmarket/shop/internal/token"
)

// CartHandler manages the open order-item rows (order_id IS NULL) that make
// up a user's cart, and their promotion into a finished Order.
type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var items []models.OrderItem
	if err := h.DB.Where("user_id = ? AND order_id IS NULL", userID).Order("id ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// AddItem inserts a cart line for (user, product) or leaves the existing one
// untouched: the quantity of an already present line is never changed here,
// only PatchItem does that.
func (h *CartHandler) AddItem(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint  `json:"product_id"`
		Quantity  *uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	qty := uint(1)
	if req.Quantity != nil && *req.Quantity >= 1 {
		qty = *req.Quantity
	}

	if err := h.productExists(req.ProductID); err != nil {
		return err
	}

	insert := models.OrderItem{UserID: userID, ProductID: req.ProductID, Quantity: qty}
	if err := h.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&insert).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var item models.OrderItem
	if err := h.DB.Where("user_id = ? AND product_id = ? AND order_id IS NULL", userID, req.ProductID).
		First(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusCreated, item)
}

// PatchItem overwrites the quantity of the caller's open line for a product.
func (h *CartHandler) PatchItem(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	productID, err := pathProductID(c)
	if err != nil {
		return err
	}

	var req struct {
		Quantity *uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "quantity is required"})
	}
	if *req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "quantity must be positive"})
	}

	if err := h.productExists(productID); err != nil {
		return err
	}

	var item models.OrderItem
	if err := h.DB.Where("user_id = ? AND product_id = ? AND order_id IS NULL", userID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item.Quantity = *req.Quantity
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":      "cart_item_updated",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) DeleteItem(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	productID, err := pathProductID(c)
	if err != nil {
		return err
	}

	var item models.OrderItem
	if err := h.DB.Where("user_id = ? AND product_id = ? AND order_id IS NULL", userID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":      "cart_item_deleted",
		"userID":    userID,
		"productID": productID,
	})
	return c.NoContent(http.StatusNoContent)
}

// Checkout turns the caller's open lines into an Order in one transaction:
// the lines survive with order_id stamped, so the cart partition stays clean.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var (
		order models.Order
		items []models.OrderItem
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND order_id IS NULL", userID).Find(&items).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if len(items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		}

		var total float64
		for _, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "product not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			total += float64(it.Quantity) * p.Price
		}

		order = models.Order{
			UserID:    userID,
			Total:     total,
			Status:    "new",
			CreatedAt: time.Now().Unix(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		if err := tx.Model(&models.OrderItem{}).
			Where("user_id = ? AND order_id IS NULL", userID).
			Update("order_id", order.ID).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		for i := range items {
			id := order.ID
			items[i].OrderID = &id
		}
		return nil
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.Total,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"total":    order.Total,
		"status":   order.Status,
		"items":    items,
	})
}
