package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jask/warehousedash/internal/session"
)

// ListUsers fetches the whole directory. The endpoint has no paging or filtering.
func (c *Client) ListUsers(ctx context.Context, sess session.Session) ([]User, error) {
	var users []User
	err := c.do(ctx, sess, call{op: "list users", method: http.MethodGet, path: "/users/", out: &users, role: session.RoleAdmin})
	if err != nil {
		return nil, err
	}
	return normalizeUsers(users), nil
}

// UpdateUser replaces a user's editable fields and returns the stored record.
func (c *Client) UpdateUser(ctx context.Context, sess session.Session, id int64, in UserUpdate) (User, error) {
	var out User
	err := c.do(ctx, sess, call{
		op:     "update user",
		method: http.MethodPatch,
		path:   fmt.Sprintf("/users/%d", id),
		body:   in,
		out:    &out,
		role:   session.RoleAdmin,
	})
	if err != nil {
		return User{}, err
	}
	if out.ID == 0 {
		// Some deployments answer 204; fall back to what was sent.
		out = User{ID: id, FullName: in.FullName, Email: in.Email, Role: in.Role}
	}
	return normalizeUser(out), nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, sess session.Session, id int64) error {
	return c.do(ctx, sess, call{
		op:     "delete user",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/users/%d", id),
		role:   session.RoleAdmin,
	})
}

type passwordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangeOwnPassword changes the signed-in user's password.
func (c *Client) ChangeOwnPassword(ctx context.Context, sess session.Session, current, next string) error {
	return c.do(ctx, sess, call{
		op:     "change password",
		method: http.MethodPatch,
		path:   "/users/me/password",
		body:   passwordChange{OldPassword: current, NewPassword: next},
	})
}
