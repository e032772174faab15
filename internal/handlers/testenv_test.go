package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fanmarket/shop/internal/handlers"
	"github.com/fanmarket/shop/internal/hash"
	"github.com/fanmarket/shop/internal/models"
	"github.com/fanmarket/shop/internal/token"
)

type testEnv struct {
	T          *testing.T
	E          *echo.Echo
	DB         *gorm.DB
	Tokens     *token.Service
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Products   *handlers.ProductHandler
	Categories *handlers.CategoryHandler
	Favorites  *handlers.FavoriteHandler
	Reviews    *handlers.ReviewHandler
	Search     *handlers.SearchHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.AuthToken{},
		&models.Category{}, &models.Franchise{}, &models.Product{},
		&models.Favorite{}, &models.Review{},
		&models.Order{}, &models.OrderItem{},
	))

	tokens := &token.Service{DB: db}
	env := &testEnv{
		T:          t,
		E:          echo.New(),
		DB:         db,
		Tokens:     tokens,
		Auth:       &handlers.AuthHandler{DB: db, Tokens: tokens},
		Users:      &handlers.UserHandler{DB: db},
		Products:   &handlers.ProductHandler{DB: db},
		Categories: &handlers.CategoryHandler{DB: db},
		Favorites:  &handlers.FavoriteHandler{DB: db},
		Reviews:    &handlers.ReviewHandler{DB: db},
		Search:     &handlers.SearchHandler{DB: db},
	}
	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, tok string) (*httptest.ResponseRecorder, echo.Context) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.T, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Token "+tok)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// authed wraps a handler in the token middleware so tests exercise it too.
func (env *testEnv) authed(h echo.HandlerFunc) echo.HandlerFunc {
	return env.Tokens.RequireToken(h)
}

func (env *testEnv) createUser(username string) (models.User, string) {
	env.T.Helper()

	pwHash, err := hash.HashPassword("password123")
	require.NoError(env.T, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: pwHash,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)

	key, err := env.Tokens.Issue(user.ID)
	require.NoError(env.T, err)
	return user, key
}

func (env *testEnv) seedCatalog(categoryName, franchiseName, productName string) (models.Category, models.Franchise, models.Product) {
	env.T.Helper()

	category := models.Category{Name: categoryName}
	require.NoError(env.T, env.DB.Create(&category).Error)

	franchise := models.Franchise{Name: franchiseName, CategoryID: category.ID}
	require.NoError(env.T, env.DB.Create(&franchise).Error)

	product := models.Product{
		Name:        productName,
		Description: "test description",
		Price:       9.99,
		Count:       5,
		FranchiseID: franchise.ID,
	}
	require.NoError(env.T, env.DB.Create(&product).Error)

	return category, franchise, product
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
