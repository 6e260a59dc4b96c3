// Package eta estimates production completion dates from a product's daily capacity
// (vueltas_max_dia) and the allocations already waiting in its queue.
package eta

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// MaxQuantity bounds a single request. Larger quantities push the ETA past any calendar.
const MaxQuantity = 1_000_000

type Tier int

const (
	TierPriority Tier = iota
	TierPremium
	TierRegular
)

func TierOf(priority, premium bool) Tier {
	switch {
	case priority:
		return TierPriority
	case premium:
		return TierPremium
	default:
		return TierRegular
	}
}

func (t Tier) String() string {
	switch t {
	case TierPriority:
		return "prioridad"
	case TierPremium:
		return "premium"
	default:
		return "regular"
	}
}

type QueueItem struct {
	AllocationID int64     `json:"allocation_id"`
	QuotationID  int64     `json:"quotation_id"`
	Folio        string    `json:"folio"`
	ProductID    int64     `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Pending      int       `json:"pending"`
	Priority     bool      `json:"priority"`
	Premium      bool      `json:"premium"`
	PaidAt       time.Time `json:"paid_at"`
}

func (q QueueItem) Tier() Tier {
	return TierOf(q.Priority, q.Premium)
}

type Request struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Priority  bool  `json:"priority"`
	Premium   bool  `json:"premium"`
}

type Estimate struct {
	ProductID     int64     `json:"product_id"`
	Quantity      int       `json:"quantity"`
	Tier          string    `json:"tier"`
	DailyCapacity int       `json:"daily_capacity"`
	QueuePosition int       `json:"queue_position"`
	DaysAhead     int       `json:"days_ahead"`
	DaysNeeded    int       `json:"days_needed"`
	TotalDays     int       `json:"total_days"`
	ETA           time.Time `json:"eta"`
}

type Projection struct {
	QueueItem
	Tier           string    `json:"tier"`
	Position       int       `json:"position"`
	Days           int       `json:"days"`
	CumulativeDays int       `json:"cumulative_days"`
	ETA            time.Time `json:"eta"`
}

// EffectiveCapacity treats a missing or zero capacity as one piece per day.
func EffectiveCapacity(capacity int) int {
	if capacity <= 0 {
		return 1
	}
	return capacity
}

// DaysFor is ceil(qty / capacity); non-positive quantities take no days.
func DaysFor(qty, capacity int) int {
	if qty <= 0 {
		return 0
	}
	capacity = EffectiveCapacity(capacity)
	days := qty / capacity
	if qty%capacity != 0 {
		days++
	}
	return days
}

// Less orders the queue: priority, then premium, then regular; FIFO by payment date inside a tier.
// Items without a payment date go last within their tier.
func Less(a, b QueueItem) bool {
	if ta, tb := a.Tier(), b.Tier(); ta != tb {
		return ta < tb
	}
	switch {
	case a.PaidAt.IsZero():
		return false
	case b.PaidAt.IsZero():
		return true
	}
	return a.PaidAt.Before(b.PaidAt)
}

// Order returns a sorted copy of the queue. Ties keep their input order.
func Order(queue []QueueItem) []QueueItem {
	ordered := make([]QueueItem, len(queue))
	copy(ordered, queue)
	sort.SliceStable(ordered, func(i, j int) bool {
		return Less(ordered[i], ordered[j])
	})
	return ordered
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Calculate places the request at the end of its tier and sums the production days of everything ahead of it.
func Calculate(capacity int, queue []QueueItem, req Request, today time.Time) (Estimate, error) {
	if req.Quantity <= 0 {
		return Estimate{}, ErrInvalidQuantity
	}
	if req.Quantity > MaxQuantity {
		return Estimate{}, fmt.Errorf("%w: %d exceeds %d", ErrInvalidQuantity, req.Quantity, MaxQuantity)
	}

	capacity = EffectiveCapacity(capacity)
	tier := TierOf(req.Priority, req.Premium)

	daysAhead, position := 0, 0
	for _, item := range Order(queue) {
		if item.Tier() > tier {
			break
		}
		daysAhead += DaysFor(item.Pending, capacity)
		position++
	}

	needed := DaysFor(req.Quantity, capacity)
	total := daysAhead + needed

	return Estimate{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		Tier:          tier.String(),
		DailyCapacity: capacity,
		QueuePosition: position + 1,
		DaysAhead:     daysAhead,
		DaysNeeded:    needed,
		TotalDays:     total,
		ETA:           startOfDay(today).AddDate(0, 0, total),
	}, nil
}

// Project walks the ordered queue and gives each item the date its last piece is expected.
func Project(capacity int, queue []QueueItem, today time.Time) []Projection {
	capacity = EffectiveCapacity(capacity)
	start := startOfDay(today)

	ordered := Order(queue)
	projections := make([]Projection, 0, len(ordered))

	cumulative := 0
	for i, item := range ordered {
		days := DaysFor(item.Pending, capacity)
		cumulative += days

		projections = append(projections, Projection{
			QueueItem:      item,
			Tier:           item.Tier().String(),
			Position:       i + 1,
			Days:           days,
			CumulativeDays: cumulative,
			ETA:            start.AddDate(0, 0, cumulative),
		})
	}

	return projections
}
