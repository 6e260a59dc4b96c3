package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type Quotation struct {
	ID           int64           `json:"id"`
	Folio        string          `json:"folio"`
	ClientID     int64           `json:"client_id"`
	ClientName   string          `json:"client_name,omitempty"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Status       string          `json:"status"`
	Priority     bool            `json:"priority"`
	Premium      bool            `json:"premium"`
	Notes        string          `json:"notes"`
	Items        []QuotationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	PaidAt       *time.Time      `json:"paid_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type QuotationItem struct {
	ID          int64           `json:"id"`
	QuotationID int64           `json:"quotation_id"`
	ProductID   int64           `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

type QuotationFilter struct {
	Status string
	Search string
	Limit  int
}

type QuotationPayment struct {
	QuotationID int64
	Priority    bool
	Premium     bool
	PaidAt      time.Time
}
