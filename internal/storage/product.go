package storage

import "github.com/shopspring/decimal"

type Product struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	VueltasMaxDia int             `json:"vueltas_max_dia"`
	Price         decimal.Decimal `json:"price"`
	IsActive      bool            `json:"is_active"`
}

// ProductCapacity is the admin view of a product's daily capacity. SKU and Name are read-only.
type ProductCapacity struct {
	ID            int64  `json:"id"`
	SKU           string `json:"sku,omitempty"`
	Name          string `json:"name,omitempty"`
	VueltasMaxDia int    `json:"vueltas_max_dia"`
}
