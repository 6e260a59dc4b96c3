package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"cotizador/internal/storage"
)

const pendingAllocationsStmt = `
	SELECT a.id, a.cotizacion_id, a.cotizacion_item_id, COALESCE(c.folio, ''), a.producto_id,
	       a.cantidad, a.completadas, a.prioridad, a.premium, a.fecha_pago, a.estatus
	FROM asignaciones_produccion a
	JOIN cotizaciones c ON c.id = a.cotizacion_id
	WHERE a.producto_id = ?
	  AND a.estatus = 'en_cola'
	  AND a.completadas < a.cantidad
	ORDER BY a.id ASC
`

// GetPendingAllocations returns the open allocations of a product in insertion order.
// Queue ordering is applied by the ETA service.
func (s *Storage) GetPendingAllocations(ctx context.Context, productID int64) ([]storage.Allocation, error) {
	const op = "storage.mysql.GetPendingAllocations"

	rows, err := s.db.QueryContext(ctx, pendingAllocationsStmt, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: producto id=%d: %w", op, productID, err)
	}

	allocations, err := scanAllocations(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return allocations, nil
}

// lockPendingAllocations reads the open allocations inside tx and keeps them locked until it ends.
func lockPendingAllocations(ctx context.Context, tx *sql.Tx, productID int64) ([]storage.Allocation, error) {
	const op = "storage.mysql.lockPendingAllocations"

	rows, err := tx.QueryContext(ctx, pendingAllocationsStmt+" FOR UPDATE", productID)
	if err != nil {
		return nil, fmt.Errorf("%s: producto id=%d: %w", op, productID, err)
	}

	allocations, err := scanAllocations(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return allocations, nil
}

func scanAllocations(rows *sql.Rows) ([]storage.Allocation, error) {
	defer rows.Close()

	var allocations []storage.Allocation
	for rows.Next() {
		var a storage.Allocation

		err := rows.Scan(&a.ID, &a.QuotationID, &a.QuotationItemID, &a.Folio, &a.ProductID,
			&a.Quantity, &a.Completed, &a.Priority, &a.Premium, &a.PaidAt, &a.Status)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		allocations = append(allocations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return allocations, nil
}
