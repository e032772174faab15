package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fanmarket/shop/internal/models"
)

func TestSearchByFranchiseAndCategory(t *testing.T) {
	env := newTestEnv(t)
	// product name itself does not contain the query terms
	_, _, product := env.seedCatalog("RPG", "Elder Realms", "Collector's Figurine")

	// franchise name match pulls the product in
	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/search?q=elder", nil, "")
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int              `json:"total"`
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, product.ID, resp.Products[0].ID)

	// and so does the category name
	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/search?q=RPG", nil, "")
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, product.ID, resp.Products[0].ID)
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog("FPS", "Boomstick", "Boomstick Deluxe Edition")

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/search?q=dELuXe", nil, "")
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
}

func TestSearchNoMatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog("FPS", "Boomstick", "Boomstick Deluxe Edition")

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/search?q=zzzzz", nil, "")
	require.NoError(t, env.Search.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int              `json:"total"`
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Zero(t, resp.Total)
	require.Empty(t, resp.Products)
}

func TestSearchMissingQuery(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/api/v1/search", nil, "")
	err := env.Search.Search(c)
	require.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}
