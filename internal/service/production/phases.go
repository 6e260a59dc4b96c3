package production

import (
	"errors"
	"fmt"
	"strings"

	"cotizador/internal/storage"
)

type Phase string

const (
	Pedidos     Phase = "pedidos"
	PorDetallar Phase = "por_detallar"
	Detallado   Phase = "detallado"
	Sancocho    Phase = "sancocho"
	Terminado   Phase = "terminado"
)

var phases = []Phase{Pedidos, PorDetallar, Detallado, Sancocho, Terminado}

var (
	ErrUnknownPhase       = errors.New("unknown phase")
	ErrInvalidTransition  = errors.New("pieces can only move to the next phase")
	ErrInsufficientPieces = errors.New("not enough pieces in source phase")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if p.Index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
	}
	return p, nil
}

func (p Phase) Index() int {
	for i, ph := range phases {
		if ph == p {
			return i
		}
	}
	return -1
}

// Next returns the following phase; terminado has none.
func (p Phase) Next() (Phase, bool) {
	i := p.Index()
	if i < 0 || i == len(phases)-1 {
		return "", false
	}
	return phases[i+1], true
}

func Count(c storage.PhaseCounts, p Phase) int {
	switch p {
	case Pedidos:
		return c.Pedidos
	case PorDetallar:
		return c.PorDetallar
	case Detallado:
		return c.Detallado
	case Sancocho:
		return c.Sancocho
	case Terminado:
		return c.Terminado
	}
	return 0
}

type Move struct {
	ProductID int64 `json:"product_id"`
	From      Phase `json:"from"`
	To        Phase `json:"to"`
	Quantity  int   `json:"quantity"`
}

// Validate checks the move against the current counts of its product.
func Validate(m Move, counts storage.PhaseCounts) error {
	if m.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if m.From.Index() < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, m.From)
	}
	if m.To.Index() < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, m.To)
	}

	next, ok := m.From.Next()
	if !ok || next != m.To {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.From, m.To)
	}

	if have := Count(counts, m.From); have < m.Quantity {
		return fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientPieces, m.From, have, m.Quantity)
	}

	return nil
}
