package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/warehousedash/internal/session"
)

// User is a row of the people directory as served by GET /users/.
type User struct {
	ID        int64        `json:"id"`
	FullName  string       `json:"full_name"`
	Email     string       `json:"email"`
	Role      session.Role `json:"role"`
	CreatedAt Timestamp    `json:"created_at"`
}

// UserUpdate is the PATCH /users/{id} body. All fields are always sent.
type UserUpdate struct {
	FullName string       `json:"full_name"`
	Email    string       `json:"email"`
	Role     session.Role `json:"role"`
}

// Product is one inventory SKU.
type Product struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	CurrentStock int             `json:"current_stock"`
	ReorderLevel int             `json:"reorder_level"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	BinLocation  string          `json:"bin_location"`
	SupplierID   int64           `json:"supplier_id"`
}

// LowStock reports whether the product is at or below its reorder level.
func (p Product) LowStock() bool { return p.CurrentStock <= p.ReorderLevel }

// ProductInput is the POST /products body.
type ProductInput struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	CurrentStock int             `json:"current_stock"`
	ReorderLevel int             `json:"reorder_level"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	BinLocation  string          `json:"bin_location"`
	SupplierID   int64           `json:"supplier_id"`
}

type OrderType string

const (
	OrderInbound  OrderType = "inbound"
	OrderOutbound OrderType = "outbound"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists statuses in display order.
var OrderStatuses = []OrderStatus{OrderPending, OrderCompleted, OrderCancelled}

// Order is an inbound or outbound stock movement.
type Order struct {
	ID          int64           `json:"id"`
	Type        OrderType       `json:"type"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedBy   int64           `json:"created_by"`
	DateCreated *Timestamp      `json:"date_created"`
}

// Timestamp accepts the backend's datetime encodings, which may omit the zone.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised value %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func normalizeUsers(users []User) []User {
	for i := range users {
		users[i] = normalizeUser(users[i])
	}
	return users
}

// normalizeUser defaults a missing role to staff, matching how the backend
// treats accounts created before roles existed.
func normalizeUser(u User) User {
	if r, err := session.ParseRole(string(u.Role)); err == nil {
		u.Role = r
	} else if strings.TrimSpace(string(u.Role)) == "" {
		u.Role = session.RoleStaff
	}
	return u
}
