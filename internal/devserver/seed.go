package devserver

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/session"
)

// SeedUser is a seeded account with its plain-text password.
type SeedUser struct {
	FullName string
	Email    string
	Role     session.Role
	Password string
}

// SeedUsers covers every role and spans more than one directory page.
var SeedUsers = []SeedUser{
	{"Ada Okafor", "ada@warehouse.test", session.RoleAdmin, "Admin#2024"},
	{"Bola Adeyemi", "bola@warehouse.test", session.RoleManager, "Manager#2024"},
	{"Chidi Eze", "chidi@warehouse.test", session.RoleStaff, "Staff#2024"},
	{"Dayo Bello", "dayo@warehouse.test", session.RoleStaff, "Staff#2024"},
	{"Émilie Laurent", "emilie@warehouse.test", session.RoleManager, "Manager#2024"},
	{"Funke Ojo", "funke@warehouse.test", session.RoleStaff, "Staff#2024"},
	{"Grace Nwosu", "grace@warehouse.test", session.RoleAdmin, "Admin#2024"},
	{"Hassan Musa", "hassan@warehouse.test", session.RoleStaff, "Staff#2024"},
	{"Ifeoma Obi", "ifeoma@warehouse.test", session.RoleStaff, "Staff#2024"},
	{"Jide Balogun", "jide@warehouse.test", session.RoleStaff, "Staff#2024"},
	{"Kemi Ade", "kemi@warehouse.test", session.RoleManager, "Manager#2024"},
	{"Lanre Cole", "lanre@warehouse.test", session.RoleStaff, "Staff#2024"},
}

var seedProducts = []api.ProductInput{
	{SKU: "PJ-2200", Name: "Pallet Jack", Category: "Handling Equipment", CurrentStock: 4, ReorderLevel: 5, UnitPrice: decimal.RequireFromString("349.00"), BinLocation: "A-01"},
	{SKU: "SW-0500", Name: "Stretch Wrap 500mm", Category: "Packaging", CurrentStock: 120, ReorderLevel: 40, UnitPrice: decimal.RequireFromString("18.75"), BinLocation: "B-03"},
	{SKU: "CB-1010", Name: "Corrugated Box 10x10", Category: "Packaging", CurrentStock: 800, ReorderLevel: 300, UnitPrice: decimal.RequireFromString("0.65"), BinLocation: "B-07"},
	{SKU: "LB-0100", Name: "Shipping Labels (roll)", Category: "Packaging", CurrentStock: 25, ReorderLevel: 30, UnitPrice: decimal.RequireFromString("9.99"), BinLocation: "C-02"},
	{SKU: "SH-4000", Name: "Steel Shelving Unit", Category: "Storage", CurrentStock: 12, ReorderLevel: 4, UnitPrice: decimal.RequireFromString("129.50"), BinLocation: "D-11"},
	{SKU: "HS-0001", Name: "Hand Scanner", Category: "Electronics", CurrentStock: 6, ReorderLevel: 6, UnitPrice: decimal.RequireFromString("219.00"), BinLocation: "E-04"},
	{SKU: "SG-0002", Name: "Safety Gloves", Category: "Safety", CurrentStock: 300, ReorderLevel: 100, UnitPrice: decimal.RequireFromString("3.20"), BinLocation: "F-01"},
	{SKU: "HV-0003", Name: "Hi-Vis Vest", Category: "Safety", CurrentStock: 45, ReorderLevel: 50, UnitPrice: decimal.RequireFromString("6.40"), BinLocation: "F-02"},
	{SKU: "TP-0048", Name: "Packing Tape 48mm", Category: "Packaging", CurrentStock: 240, ReorderLevel: 60, UnitPrice: decimal.RequireFromString("2.15"), BinLocation: "B-01"},
	{SKU: "FL-3000", Name: "Forklift Battery", Category: "Handling Equipment", CurrentStock: 2, ReorderLevel: 1, UnitPrice: decimal.RequireFromString("1899.00"), BinLocation: "A-09"},
	{SKU: "BN-0200", Name: "Storage Bin Small", Category: "Storage", CurrentStock: 150, ReorderLevel: 50, UnitPrice: decimal.RequireFromString("4.80"), BinLocation: "D-02"},
}

// Seed fills s with the demo data set.
func Seed(s *Store) error {
	for _, u := range SeedUsers {
		if _, err := s.AddUser(u.FullName, u.Email, u.Role, u.Password); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	for _, p := range seedProducts {
		if _, err := s.AddProduct(p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
	}
	base := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	statuses := []api.OrderStatus{api.OrderPending, api.OrderCompleted, api.OrderCompleted, api.OrderCancelled}
	for i := 0; i < 14; i++ {
		typ := api.OrderInbound
		if i%2 == 1 {
			typ = api.OrderOutbound
		}
		created := api.Timestamp{Time: base.Add(time.Duration(i*29) * time.Hour)}
		s.AddOrder(api.Order{
			ID:          int64(1000 + i),
			Type:        typ,
			Status:      statuses[i%len(statuses)],
			TotalAmount: decimal.NewFromInt(int64(150 + i*37)).Add(decimal.New(int64(i*11%100), -2)),
			CreatedBy:   int64(i%3 + 1),
			DateCreated: &created,
		})
	}
	return nil
}
