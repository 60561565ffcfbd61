package inventory

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/warehousedash/internal/api"
)

var (
	ErrSKURequired    = errors.New("inventory: sku is required")
	ErrNameRequired   = errors.New("inventory: name is required")
	ErrNegativeStock  = errors.New("inventory: stock levels cannot be negative")
	ErrNegativePrice  = errors.New("inventory: unit price cannot be negative")
	ErrInvalidStock   = errors.New("inventory: current stock must be a whole number")
	ErrInvalidReorder = errors.New("inventory: reorder level must be a whole number")
	ErrInvalidPrice   = errors.New("inventory: unit price must be a number")
)

var messages = map[error]string{
	ErrSKURequired:    "SKU is required",
	ErrNameRequired:   "Name is required",
	ErrNegativeStock:  "Stock levels cannot be negative",
	ErrNegativePrice:  "Unit price cannot be negative",
	ErrInvalidStock:   "Current stock must be a whole number",
	ErrInvalidReorder: "Reorder level must be a whole number",
	ErrInvalidPrice:   "Unit price must be a number",
}

// Message maps a form error to the text shown under the add-product form.
// Errors from elsewhere fall through to api.Message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return api.Message(err)
}

// Summary is the footer of the inventory screen.
type Summary struct {
	Products   int
	Units      int
	LowStock   int
	StockValue decimal.Decimal
}

func Summarize(products []api.Product) Summary {
	s := Summary{StockValue: decimal.Zero}
	for _, p := range products {
		s.Products++
		s.Units += p.CurrentStock
		if p.LowStock() {
			s.LowStock++
		}
		s.StockValue = s.StockValue.Add(p.UnitPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock))))
	}
	return s
}

// ParsePrice accepts an empty string as zero.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// Validate checks an add-product form before it is sent.
func Validate(in api.ProductInput) error {
	switch {
	case strings.TrimSpace(in.SKU) == "":
		return ErrSKURequired
	case strings.TrimSpace(in.Name) == "":
		return ErrNameRequired
	case in.CurrentStock < 0 || in.ReorderLevel < 0:
		return ErrNegativeStock
	case in.UnitPrice.IsNegative():
		return ErrNegativePrice
	}
	return nil
}

// FormatPrice renders a money amount with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
