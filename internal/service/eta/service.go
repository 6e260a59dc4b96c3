package eta

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"cotizador/internal/storage"
)

type QueueStorage interface {
	GetProduct(ctx context.Context, id int64) (*storage.Product, error)
	GetPendingAllocations(ctx context.Context, productID int64) ([]storage.Allocation, error)
}

type Service struct {
	storage QueueStorage
	now     func() time.Time
}

func NewService(storage QueueStorage) *Service {
	return &Service{storage: storage, now: time.Now}
}

// WithClock replaces the service clock, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type QueueProjection struct {
	Product *storage.Product `json:"product"`
	Items   []Projection     `json:"items"`
}

func FromAllocations(allocations []storage.Allocation) []QueueItem {
	items := make([]QueueItem, 0, len(allocations))
	for _, a := range allocations {
		items = append(items, QueueItem{
			AllocationID: a.ID,
			QuotationID:  a.QuotationID,
			Folio:        a.Folio,
			ProductID:    a.ProductID,
			Quantity:     a.Quantity,
			Pending:      a.Pending(),
			Priority:     a.Priority,
			Premium:      a.Premium,
			PaidAt:       a.PaidAt,
		})
	}
	return items
}

func (s *Service) load(ctx context.Context, productID int64) (*storage.Product, []QueueItem, error) {
	var (
		product     *storage.Product
		allocations []storage.Allocation
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		product, err = s.storage.GetProduct(gctx, productID)
		return err
	})

	g.Go(func() error {
		var err error
		allocations, err = s.storage.GetPendingAllocations(gctx, productID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return product, FromAllocations(allocations), nil
}

func (s *Service) EstimateProduct(ctx context.Context, req Request) (Estimate, error) {
	const op = "service.eta.EstimateProduct"

	if req.Quantity <= 0 {
		return Estimate{}, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	product, queue, err := s.load(ctx, req.ProductID)
	if err != nil {
		return Estimate{}, fmt.Errorf("%s: producto id=%d: %w", op, req.ProductID, err)
	}

	est, err := Calculate(product.VueltasMaxDia, queue, req, s.now())
	if err != nil {
		return Estimate{}, fmt.Errorf("%s: %w", op, err)
	}

	return est, nil
}

func (s *Service) ProjectQueue(ctx context.Context, productID int64) (*QueueProjection, error) {
	const op = "service.eta.ProjectQueue"

	product, queue, err := s.load(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: producto id=%d: %w", op, productID, err)
	}

	return &QueueProjection{
		Product: product,
		Items:   Project(product.VueltasMaxDia, queue, s.now()),
	}, nil
}
