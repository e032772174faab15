package handlers

import (
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/fanmarket/shop/internal/models"
	"github.com/fanmarket/shop/internal/search"
	"github.com/fanmarket/shop/internal/util"
)

type SearchHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

// Search matches the query as a case-insensitive substring of the product
// name, its franchise name or the franchise's category name.
func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	pattern := "%" + strings.ToLower(q) + "%"

	var products []models.Product
	if err := h.DB.Model(&models.Product{}).
		Joins("JOIN franchises ON franchises.id = products.franchise_id").
		Joins("JOIN categories ON categories.id = franchises.category_id").
		Where("LOWER(products.name) LIKE ? OR LOWER(franchises.name) LIKE ? OR LOWER(categories.name) LIKE ?",
			pattern, pattern, pattern).
		Order("products.id ASC").
		Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"total": len(products), "products": products})
}

// Fuzzy serves typo-tolerant product search from the Elasticsearch index.
func (h *SearchHandler) Fuzzy(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search index unavailable")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 0)
	from, size := util.Calculate(page, size)

	total, products, err := search.Fuzzy(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
