package api

import (
	"context"
	"net/http"

	"github.com/jask/warehousedash/internal/session"
)

// ListOrders fetches every order visible to the caller.
func (c *Client) ListOrders(ctx context.Context, sess session.Session) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, sess, call{op: "list orders", method: http.MethodGet, path: "/orders/", out: &orders, role: session.RoleStaff}); err != nil {
		return nil, err
	}
	return orders, nil
}
