package quotation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cotizador/internal/storage"
)

type Storage interface {
	CreateQuotation(ctx context.Context, q *storage.Quotation, folio func(id int64) string) (int64, error)
	GetQuotation(ctx context.Context, id int64) (*storage.Quotation, error)
	ListQuotations(ctx context.Context, filter storage.QuotationFilter) ([]*storage.Quotation, error)
	UpdateQuotationStatus(ctx context.Context, id int64, from, to string) error
	MarkQuotationPaid(ctx context.Context, p storage.QuotationPayment) ([]storage.Allocation, error)
}

type ExchangeRates interface {
	USDMXN(ctx context.Context) (decimal.Decimal, error)
}

type Service struct {
	log     *slog.Logger
	storage Storage
	rates   ExchangeRates
	taxRate decimal.Decimal
	now     func() time.Time
}

func NewService(log *slog.Logger, storage Storage, rates ExchangeRates, taxRate decimal.Decimal) *Service {
	return &Service{
		log:     log,
		storage: storage,
		rates:   rates,
		taxRate: taxRate,
		now:     time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*storage.Quotation, error) {
	const op = "service.quotation.Create"

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := &storage.Quotation{
		ClientID:     req.ClientID,
		Currency:     strings.ToUpper(req.Currency),
		ExchangeRate: decimal.NewFromInt(1),
		Status:       StatusBorrador,
		Notes:        req.Notes,
		Items:        req.Items,
	}
	if q.Currency == "" {
		q.Currency = CurrencyMXN
	}

	if q.Currency == CurrencyUSD {
		rate, err := s.rates.USDMXN(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: tipo de cambio: %w", op, err)
		}
		q.ExchangeRate = rate
	}

	totals := ComputeTotals(q.Items, s.taxRate)
	q.Subtotal, q.Tax, q.Total = totals.Subtotal, totals.Tax, totals.Total

	id, err := s.storage.CreateQuotation(ctx, q, Folio(s.now()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("cotizacion creada",
		slog.String("op", op),
		slog.Int64("id", id),
		slog.String("currency", q.Currency),
		slog.String("total", q.Total.StringFixed(2)),
	)

	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*storage.Quotation, error) {
	const op = "service.quotation.Get"

	q, err := s.storage.GetQuotation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return q, nil
}

func (s *Service) List(ctx context.Context, filter storage.QuotationFilter) ([]*storage.Quotation, error) {
	const op = "service.quotation.List"

	quotations, err := s.storage.ListQuotations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return quotations, nil
}

// UpdateStatus applies a manual transition. Payment goes through MarkPaid.
func (s *Service) UpdateStatus(ctx context.Context, id int64, to string) (*storage.Quotation, error) {
	const op = "service.quotation.UpdateStatus"

	if to == StatusPagada {
		return nil, fmt.Errorf("%s: %w: use the payment endpoint", op, ErrInvalidTransition)
	}

	q, err := s.storage.GetQuotation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !CanTransition(q.Status, to) {
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, ErrInvalidTransition, q.Status, to)
	}

	if err := s.storage.UpdateQuotationStatus(ctx, id, q.Status, to); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q.Status = to
	return q, nil
}

type PaymentResult struct {
	Quotation   *storage.Quotation   `json:"quotation"`
	Allocations []storage.Allocation `json:"allocations"`
}

// MarkPaid records the payment and enqueues every item into its product's production queue.
func (s *Service) MarkPaid(ctx context.Context, id int64, priority, premium bool) (*PaymentResult, error) {
	const op = "service.quotation.MarkPaid"

	q, err := s.storage.GetQuotation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !CanTransition(q.Status, StatusPagada) {
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, ErrInvalidTransition, q.Status, StatusPagada)
	}

	paidAt := s.now().UTC()
	allocations, err := s.storage.MarkQuotationPaid(ctx, storage.QuotationPayment{
		QuotationID: id,
		Priority:    priority,
		Premium:     premium,
		PaidAt:      paidAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q.Status = StatusPagada
	q.Priority = priority
	q.Premium = premium
	q.PaidAt = &paidAt

	s.log.Info("cotizacion pagada",
		slog.String("op", op),
		slog.Int64("id", id),
		slog.Bool("priority", priority),
		slog.Bool("premium", premium),
		slog.Int("allocations", len(allocations)),
	)

	return &PaymentResult{Quotation: q, Allocations: allocations}, nil
}
