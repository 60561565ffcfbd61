package api

import (
	"context"
	"net/http"

	"github.com/jask/warehousedash/internal/session"
)

func (c *Client) ListProducts(ctx context.Context, sess session.Session) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, sess, call{op: "list products", method: http.MethodGet, path: "/products/", out: &products, role: session.RoleManager}); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, sess session.Session, in ProductInput) (Product, error) {
	var out Product
	err := c.do(ctx, sess, call{op: "create product", method: http.MethodPost, path: "/products", body: in, out: &out, role: session.RoleManager})
	return out, err
}
