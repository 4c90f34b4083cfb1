package client

import (
	"context"
	"net/http"
	"testing"

	"storefront/cart/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendClient_GetProducts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		assert.Equal(t, "apple", r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, `[
			{"product_id":1,"product_name":"Apple","product_cost":0.99,"product_stock":10,"product_weight":0.3},
			{"product_id":2,"product_name":"Apple Pie","product_cost":7.5,"product_stock":0,"product_weight":1.2}
		]`)
	}))

	page, err := c.GetProducts(context.Background(), domain.ProductQuery{Page: 2, Search: "apple"})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []domain.Product{
		{ID: "1", Name: "Apple", Price: 0.99, Stock: 10, Weight: 0.3, InStock: true},
		{ID: "2", Name: "Apple Pie", Price: 7.5, Stock: 0, Weight: 1.2, InStock: false},
	}, page.Items)
}

func TestBackendClient_GetProducts_NoSearchParam(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSearch := r.URL.Query()["search"]
		assert.False(t, hasSearch)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, `[]`)
	}))

	page, err := c.GetProducts(context.Background(), domain.ProductQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestBackendClient_GetProduct(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/9" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, `{"product_id":9,"product_name":"Bread","product_cost":3.25,"product_stock":4,"product_weight":1}`)
	}))

	p, err := c.GetProduct(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, &domain.Product{ID: "9", Name: "Bread", Price: 3.25, Stock: 4, Weight: 1, InStock: true}, p)

	_, err = c.GetProduct(context.Background(), "10")
	assert.EqualError(t, err, "HTTP 404: Not Found")
}
