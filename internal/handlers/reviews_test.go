package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fanmarket/shop/internal/models"
)

func TestCreateReview(t *testing.T) {
	env := newTestEnv(t)
	user, tok := env.createUser("test_user")
	_, _, product := env.seedCatalog("RPG", "Elder Realms", "Elder Realms VI")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/products/1/reviews",
		map[string]interface{}{"rating": 4, "text": "solid sequel"}, tok)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(product.ID))
	require.NoError(t, env.authed(env.Reviews.Create)(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.ID, resp.UserID)
	require.Equal(t, product.ID, resp.ProductID)
	require.Equal(t, uint(4), resp.Rating)
}

func TestCreateReviewDuplicate(t *testing.T) {
	env := newTestEnv(t)
	user, tok := env.createUser("test_user")
	_, _, product := env.seedCatalog("RPG", "Elder Realms", "Elder Realms VI")

	require.NoError(t, env.DB.Create(&models.Review{
		UserID: user.ID, ProductID: product.ID, Rating: 5, Text: "first take",
	}).Error)

	// a second review fails regardless of its content
	for _, body := range []map[string]interface{}{
		{"rating": 5, "text": "first take"},
		{"rating": 1, "text": "changed my mind"},
	} {
		rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/products/1/reviews", body, tok)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(product.ID))
		require.NoError(t, env.authed(env.Reviews.Create)(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "already reviewed")
	}

	var count int64
	require.NoError(t, env.DB.Model(&models.Review{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCreateReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.createUser("test_user")
	_, _, product := env.seedCatalog("RPG", "Elder Realms", "Elder Realms VI")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/products/1/reviews",
		map[string]interface{}{"rating": 9}, tok)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(product.ID))
	require.NoError(t, env.authed(env.Reviews.Create)(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReviewUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.createUser("test_user")

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/products/77/reviews",
		map[string]interface{}{"rating": 3}, tok)
	c.SetParamNames("id")
	c.SetParamValues("77")
	err := env.authed(env.Reviews.Create)(c)
	require.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestListReviewsByProduct(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser("test_user")
	other, _ := env.createUser("other_user")
	_, _, product := env.seedCatalog("RPG", "Elder Realms", "Elder Realms VI")

	require.NoError(t, env.DB.Create(&models.Review{UserID: user.ID, ProductID: product.ID, Rating: 4}).Error)
	require.NoError(t, env.DB.Create(&models.Review{UserID: other.ID, ProductID: product.ID, Rating: 2}).Error)

	// listing needs no token
	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/1/reviews", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(product.ID))
	require.NoError(t, env.Reviews.ListByProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reviews []models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	require.Len(t, reviews, 2)
}
