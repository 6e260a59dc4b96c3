package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cotizador/internal/service/eta"
	"cotizador/internal/storage"
)

type PhaseStorage interface {
	GetPhaseCounts(ctx context.Context, productID int64) (*storage.PhaseCounts, error)
	ApplyPhaseMove(ctx context.Context, move storage.PhaseMove, credit storage.CreditFunc) ([]storage.AllocationCredit, error)
}

type Service struct {
	log     *slog.Logger
	storage PhaseStorage
}

func NewService(log *slog.Logger, storage PhaseStorage) *Service {
	return &Service{log: log, storage: storage}
}

type MoveResult struct {
	Counts  *storage.PhaseCounts       `json:"counts"`
	Credits []storage.AllocationCredit `json:"credits,omitempty"`
}

func (s *Service) Counts(ctx context.Context, productID int64) (*storage.PhaseCounts, error) {
	const op = "service.production.Counts"

	counts, err := s.storage.GetPhaseCounts(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return counts, nil
}

// Credits spreads finished pieces over the open allocations in queue order.
func Credits(allocations []storage.Allocation, finished int) []storage.AllocationCredit {
	var credits []storage.AllocationCredit

	for _, item := range eta.Order(eta.FromAllocations(allocations)) {
		if finished <= 0 {
			break
		}
		if item.Pending <= 0 {
			continue
		}

		n := min(item.Pending, finished)
		credits = append(credits, storage.AllocationCredit{AllocationID: item.AllocationID, Quantity: n})
		finished -= n
	}

	return credits
}

func (s *Service) MovePieces(ctx context.Context, m Move) (*MoveResult, error) {
	const op = "service.production.MovePieces"

	counts, err := s.storage.GetPhaseCounts(ctx, m.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := Validate(m, *counts); err != nil {
		return nil, fmt.Errorf("%s: producto id=%d: %w", op, m.ProductID, err)
	}

	move := storage.PhaseMove{
		ProductID: m.ProductID,
		From:      string(m.From),
		To:        string(m.To),
		Quantity:  m.Quantity,
	}

	// finished pieces are credited against the queue as it stands inside the move transaction
	var credit storage.CreditFunc
	if m.To == Terminado {
		credit = Credits
	}

	credits, err := s.storage.ApplyPhaseMove(ctx, move, credit)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInsufficientPieces, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("piezas movidas",
		slog.String("op", op),
		slog.Int64("product_id", m.ProductID),
		slog.String("from", string(m.From)),
		slog.String("to", string(m.To)),
		slog.Int("quantity", m.Quantity),
		slog.Int("credited_allocations", len(credits)),
	)

	updated, err := s.storage.GetPhaseCounts(ctx, m.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &MoveResult{Counts: updated, Credits: credits}, nil
}
