package quotation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"cotizador/internal/storage"
)

func TestComputeTotals(t *testing.T) {
	items := []storage.QuotationItem{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("149.90")},
		{ProductID: 2, Quantity: 12, UnitPrice: decimal.RequireFromString("35.333")},
	}

	totals := ComputeTotals(items, decimal.RequireFromString("0.16"))

	assert.Equal(t, "449.70", items[0].Amount.StringFixed(2))
	assert.Equal(t, "424.00", items[1].Amount.StringFixed(2))
	assert.Equal(t, "873.70", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "139.79", totals.Tax.StringFixed(2))
	assert.Equal(t, "1013.49", totals.Total.StringFixed(2))
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil, decimal.RequireFromString("0.16"))
	assert.True(t, totals.Total.IsZero())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusBorrador, StatusEnviada))
	assert.True(t, CanTransition(StatusEnviada, StatusAprobada))
	assert.True(t, CanTransition(StatusAprobada, StatusPagada))
	assert.True(t, CanTransition(StatusEnviada, StatusCancelada))

	assert.False(t, CanTransition(StatusBorrador, StatusPagada))
	assert.False(t, CanTransition(StatusPagada, StatusCancelada))
	assert.False(t, CanTransition(StatusCancelada, StatusBorrador))
}

func TestFolio(t *testing.T) {
	f := Folio(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "FK-202604-57", f(57))
}

func TestCreateRequest_Validate(t *testing.T) {
	valid := CreateRequest{
		ClientID: 1,
		Currency: "usd",
		Items:    []storage.QuotationItem{{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *CreateRequest)
	}{
		{"no client", func(r *CreateRequest) { r.ClientID = 0 }},
		{"bad currency", func(r *CreateRequest) { r.Currency = "EUR" }},
		{"no items", func(r *CreateRequest) { r.Items = nil }},
		{"no product", func(r *CreateRequest) { r.Items = []storage.QuotationItem{{Quantity: 1}} }},
		{"zero quantity", func(r *CreateRequest) { r.Items = []storage.QuotationItem{{ProductID: 1}} }},
		{"negative price", func(r *CreateRequest) {
			r.Items = []storage.QuotationItem{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidQuotation)
		})
	}
}
