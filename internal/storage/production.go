package storage

import "time"

// Allocation is a paid quotation item waiting in its product's production queue.
type Allocation struct {
	ID              int64     `json:"id"`
	QuotationID     int64     `json:"quotation_id"`
	QuotationItemID int64     `json:"quotation_item_id"`
	Folio           string    `json:"folio"`
	ProductID       int64     `json:"product_id"`
	Quantity        int       `json:"quantity"`
	Completed       int       `json:"completed"`
	Priority        bool      `json:"priority"`
	Premium         bool      `json:"premium"`
	PaidAt          time.Time `json:"paid_at"`
	Status          string    `json:"status"`
}

func (a Allocation) Pending() int {
	if a.Completed >= a.Quantity {
		return 0
	}
	return a.Quantity - a.Completed
}

type PhaseCounts struct {
	ProductID   int64     `json:"product_id"`
	Pedidos     int       `json:"pedidos"`
	PorDetallar int       `json:"por_detallar"`
	Detallado   int       `json:"detallado"`
	Sancocho    int       `json:"sancocho"`
	Terminado   int       `json:"terminado"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AllocationCredit struct {
	AllocationID int64 `json:"allocation_id"`
	Quantity     int   `json:"quantity"`
}

// PhaseMove moves pieces between two phase columns. From and To are column names.
type PhaseMove struct {
	ProductID int64
	From      string
	To        string
	Quantity  int
}

// CreditFunc spreads finished pieces over the open allocations of a product.
type CreditFunc func(allocations []Allocation, finished int) []AllocationCredit
