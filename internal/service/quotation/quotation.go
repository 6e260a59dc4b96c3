package quotation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cotizador/internal/storage"
)

const (
	StatusBorrador  = "borrador"
	StatusEnviada   = "enviada"
	StatusAprobada  = "aprobada"
	StatusPagada    = "pagada"
	StatusCancelada = "cancelada"

	CurrencyMXN = "MXN"
	CurrencyUSD = "USD"
)

var (
	ErrInvalidQuotation  = errors.New("invalid quotation")
	ErrInvalidTransition = errors.New("invalid status transition")
)

var transitions = map[string][]string{
	StatusBorrador: {StatusEnviada, StatusCancelada},
	StatusEnviada:  {StatusAprobada, StatusBorrador, StatusCancelada},
	StatusAprobada: {StatusPagada, StatusCancelada},
}

func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals fills each item's amount and returns the rounded totals.
func ComputeTotals(items []storage.QuotationItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].Amount = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(items[i].Amount)
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func Folio(createdAt time.Time) func(id int64) string {
	return func(id int64) string {
		return fmt.Sprintf("FK-%s-%d", createdAt.Format("200601"), id)
	}
}

type CreateRequest struct {
	ClientID int64                   `json:"client_id"`
	Currency string                  `json:"currency"`
	Notes    string                  `json:"notes"`
	Items    []storage.QuotationItem `json:"items"`
}

func (r CreateRequest) Validate() error {
	if r.ClientID <= 0 {
		return fmt.Errorf("%w: client_id is required", ErrInvalidQuotation)
	}

	switch strings.ToUpper(r.Currency) {
	case "", CurrencyMXN, CurrencyUSD:
	default:
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidQuotation, r.Currency)
	}

	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidQuotation)
	}

	for i, it := range r.Items {
		if it.ProductID <= 0 {
			return fmt.Errorf("%w: item %d: product_id is required", ErrInvalidQuotation, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidQuotation, i)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d: unit_price cannot be negative", ErrInvalidQuotation, i)
		}
	}

	return nil
}
