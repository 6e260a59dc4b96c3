package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cotizador/internal/storage"
)

var phaseColumns = map[string]struct{}{
	"pedidos":      {},
	"por_detallar": {},
	"detallado":    {},
	"sancocho":     {},
	"terminado":    {},
}

// GetPhaseCounts returns zero counts for a product that never entered production
// and storage.ErrNotFound for an unknown product.
func (s *Storage) GetPhaseCounts(ctx context.Context, productID int64) (*storage.PhaseCounts, error) {
	const op = "storage.mysql.GetPhaseCounts"

	stmt := `
		SELECT producto_id, pedidos, por_detallar, detallado, sancocho, terminado, updated_at
		FROM produccion_fases
		WHERE producto_id = ?
	`

	var c storage.PhaseCounts
	err := s.db.QueryRowContext(ctx, stmt, productID).
		Scan(&c.ProductID, &c.Pedidos, &c.PorDetallar, &c.Detallado, &c.Sancocho, &c.Terminado, &c.UpdatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: producto id=%d: %w", op, productID, err)
		}

		var exists bool
		err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM productos WHERE id = ?)`, productID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("%s: producto id=%d: %w", op, productID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%s: producto id=%d: %w", op, productID, storage.ErrNotFound)
		}

		return &storage.PhaseCounts{ProductID: productID}, nil
	}

	return &c, nil
}

// ApplyPhaseMove moves pieces between phases in one transaction. When credit is not nil the open
// allocations are read and locked inside the same transaction, credit spreads the moved pieces over
// them and the resulting credits are applied and returned.
// storage.ErrConflict is returned when the source phase no longer holds enough pieces.
func (s *Storage) ApplyPhaseMove(ctx context.Context, move storage.PhaseMove, credit storage.CreditFunc) ([]storage.AllocationCredit, error) {
	const op = "storage.mysql.ApplyPhaseMove"

	if _, ok := phaseColumns[move.From]; !ok {
		return nil, fmt.Errorf("%s: unknown phase %q", op, move.From)
	}
	if _, ok := phaseColumns[move.To]; !ok {
		return nil, fmt.Errorf("%s: unknown phase %q", op, move.To)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	// column names come from the whitelist above
	stmt := fmt.Sprintf(`
		UPDATE produccion_fases
		SET %[1]s = %[1]s - ?, %[2]s = %[2]s + ?
		WHERE producto_id = ? AND %[1]s >= ?
	`, move.From, move.To)

	res, err := tx.ExecContext(ctx, stmt, move.Quantity, move.Quantity, move.ProductID, move.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%s: producto id=%d: %w", op, move.ProductID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: producto id=%d %s -> %s x%d: %w", op, move.ProductID, move.From, move.To, move.Quantity, storage.ErrConflict)
	}

	var credits []storage.AllocationCredit
	if credit != nil {
		// the produccion_fases row lock taken above serializes moves of the same product
		allocations, err := lockPendingAllocations(ctx, tx, move.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		credits = credit(allocations, move.Quantity)
		if err := applyCredits(ctx, tx, move.ProductID, credits); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return credits, nil
}

func applyCredits(ctx context.Context, tx *sql.Tx, productID int64, credits []storage.AllocationCredit) error {
	const op = "storage.mysql.applyCredits"

	if len(credits) == 0 {
		return nil
	}

	// MySQL assigns left to right, so estatus sees the new completadas.
	stmt, err := tx.PrepareContext(ctx, `
		UPDATE asignaciones_produccion
		SET completadas = LEAST(cantidad, completadas + ?),
		    estatus = IF(completadas >= cantidad, 'terminado', estatus)
		WHERE id = ? AND producto_id = ?
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, c := range credits {
		if _, err := stmt.ExecContext(ctx, c.Quantity, c.AllocationID, productID); err != nil {
			return fmt.Errorf("%s: allocation id=%d: %w", op, c.AllocationID, err)
		}
	}

	return nil
}

func addToPedidos(ctx context.Context, tx *sql.Tx, productID int64, qty int) error {
	const op = "storage.mysql.addToPedidos"

	_, err := tx.ExecContext(ctx, `
		INSERT INTO produccion_fases (producto_id, pedidos) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE pedidos = pedidos + VALUES(pedidos)
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("%s: producto id=%d: %w", op, productID, err)
	}

	return nil
}
