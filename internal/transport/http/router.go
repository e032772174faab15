package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/fanmarket/shop/internal/handlers"
	"github.com/fanmarket/shop/internal/handlers/cart"
	"github.com/fanmarket/shop/internal/token"
)

type Deps struct {
	DB              *gorm.DB
	Tokens          *token.Service
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	FavoriteHandler *handlers.FavoriteHandler
	ReviewHandler   *handlers.ReviewHandler
	CartHandler     *cart.CartHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(204) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(204) })

	v1 := e.Group("/api/v1")

	v1.POST("/signup", d.AuthHandler.Signup)
	v1.POST("/login", d.AuthHandler.Login)

	v1.GET("/search", d.SearchHandler.Search)
	v1.GET("/search/fuzzy", d.SearchHandler.Fuzzy)

	v1.GET("/franchises/:category", d.ProductHandler.FranchisesByCategory)

	categories := v1.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.GET("/:id", d.CategoryHandler.GetCategory)
	categories.POST("", d.CategoryHandler.CreateCategory)
	categories.PATCH("/:id", d.CategoryHandler.PatchCategory)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct)
	products.PATCH("/:id", d.ProductHandler.PatchProduct)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)

	products.GET("/:id/reviews", d.ReviewHandler.ListByProduct)
	products.POST("/:id/reviews", d.ReviewHandler.Create, d.Tokens.RequireToken)

	users := v1.Group("/users", d.Tokens.RequireToken)
	users.GET("/data", d.UserHandler.GetData)
	users.PUT("/data", d.UserHandler.UpdateData)
	users.GET("/orders", d.UserHandler.GetOrders)

	favorites := v1.Group("/favorites", d.Tokens.RequireToken)
	favorites.GET("", d.FavoriteHandler.List)
	favorites.POST("/:product_id", d.FavoriteHandler.Add)
	favorites.DELETE("/:product_id", d.FavoriteHandler.Remove)

	cartGroup := v1.Group("/cart", d.Tokens.RequireToken)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddItem)
	cartGroup.POST("/checkout", d.CartHandler.Checkout)
	cartGroup.PATCH("/:product_id", d.CartHandler.PatchItem)
	cartGroup.DELETE("/:product_id", d.CartHandler.DeleteItem)
}
