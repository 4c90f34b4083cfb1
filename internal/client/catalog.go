package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/cart/internal/domain"
)

// productWire is the backend's product JSON, which uses its own field names.
type productWire struct {
	ID     json.Number `json:"product_id"`
	Name   string      `json:"product_name"`
	Cost   float64     `json:"product_cost"`
	Stock  int         `json:"product_stock"`
	Weight float64     `json:"product_weight"`
}

func (p productWire) toDomain() domain.Product {
	return domain.Product{
		ID:      p.ID.String(),
		Name:    p.Name,
		Price:   p.Cost,
		Stock:   p.Stock,
		Weight:  p.Weight,
		InStock: p.Stock > 0,
	}
}

func (c *backendClient) GetProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 12
	}

	req := c.newRequest(ctx).
		SetQueryParam("page", strconv.Itoa(query.Page)).
		SetQueryParam("limit", strconv.Itoa(query.Limit))
	if query.Search != "" {
		req.SetQueryParam("search", query.Search)
	}

	body, err := c.do(ctx, req, http.MethodGet, productsPath)
	if err != nil {
		return nil, err
	}

	var wire []productWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ClientError{Op: "decode products", Err: err}
	}

	page := &domain.ProductPage{
		Items: make([]domain.Product, 0, len(wire)),
	}
	for _, p := range wire {
		page.Items = append(page.Items, p.toDomain())
	}
	page.Total = len(page.Items)

	return page, nil
}

func (c *backendClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	body, err := c.do(ctx, c.newRequest(ctx).SetPathParam("id", id), http.MethodGet, productPath)
	if err != nil {
		return nil, err
	}

	var wire productWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ClientError{Op: "decode product", Err: err}
	}

	product := wire.toDomain()
	return &product, nil
}
