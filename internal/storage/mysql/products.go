package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cotizador/internal/storage"
)

func (s *Storage) GetProduct(ctx context.Context, id int64) (*storage.Product, error) {
	const op = "storage.mysql.GetProduct"

	stmt := `SELECT id, sku, nombre, vueltas_max_dia, precio, activo FROM productos WHERE id = ?`

	var (
		p       storage.Product
		vueltas sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, stmt, id).Scan(&p.ID, &p.SKU, &p.Name, &vueltas, &p.Price, &p.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: producto id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: producto id=%d: %w", op, id, err)
	}

	if vueltas.Valid {
		p.VueltasMaxDia = int(vueltas.Int64)
	}

	return &p, nil
}

// ListProductCapacities returns the active products with their daily capacity, 0 when unset.
func (s *Storage) ListProductCapacities(ctx context.Context) ([]storage.ProductCapacity, error) {
	const op = "storage.mysql.ListProductCapacities"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, nombre, COALESCE(vueltas_max_dia, 0)
		FROM productos
		WHERE activo = TRUE
		ORDER BY nombre ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var caps []storage.ProductCapacity
	for rows.Next() {
		var c storage.ProductCapacity
		if err := rows.Scan(&c.ID, &c.SKU, &c.Name, &c.VueltasMaxDia); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		caps = append(caps, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return caps, nil
}

func (s *Storage) UpdateProductCapacities(ctx context.Context, caps []storage.ProductCapacity) error {
	const op = "storage.mysql.UpdateProductCapacities"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE productos SET vueltas_max_dia = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, c := range caps {
		res, err := stmt.ExecContext(ctx, c.VueltasMaxDia, c.ID)
		if err != nil {
			return fmt.Errorf("%s: producto id=%d: %w", op, c.ID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: rows affected: %w", op, err)
		}

		// MySQL reports 0 affected rows when the value did not change, so only a missing row is an error.
		if n == 0 {
			var exists bool
			err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM productos WHERE id = ?)`, c.ID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("%s: producto id=%d: %w", op, c.ID, err)
			}
			if !exists {
				return fmt.Errorf("%s: producto id=%d: %w", op, c.ID, storage.ErrNotFound)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
