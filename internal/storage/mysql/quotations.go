package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cotizador/internal/storage"
)

const quotationColumns = `
	c.id, COALESCE(c.folio, ''), c.cliente_id, COALESCE(cl.nombre, ''), c.moneda, c.tipo_cambio, c.estatus,
	c.prioridad, c.premium, COALESCE(c.notas, ''), c.subtotal, c.iva, c.total, c.fecha_pago, c.created_at, c.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuotation(row rowScanner) (*storage.Quotation, error) {
	var (
		q      storage.Quotation
		paidAt sql.NullTime
	)

	err := row.Scan(&q.ID, &q.Folio, &q.ClientID, &q.ClientName, &q.Currency, &q.ExchangeRate, &q.Status,
		&q.Priority, &q.Premium, &q.Notes, &q.Subtotal, &q.Tax, &q.Total, &paidAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		t := paidAt.Time
		q.PaidAt = &t
	}

	return &q, nil
}

// CreateQuotation stores the quotation with its items and assigns the folio built by folio(id).
func (s *Storage) CreateQuotation(ctx context.Context, q *storage.Quotation, folio func(id int64) string) (int64, error) {
	const op = "storage.mysql.CreateQuotation"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO cotizaciones (cliente_id, moneda, tipo_cambio, estatus, prioridad, premium, notas, subtotal, iva, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ClientID, q.Currency, q.ExchangeRate, q.Status, q.Priority, q.Premium, q.Notes, q.Subtotal, q.Tax, q.Total)
	if err != nil {
		if isForeignKey(err) {
			return 0, fmt.Errorf("%s: cliente id=%d: %w", op, q.ClientID, storage.ErrNotFound)
		}
		return 0, fmt.Errorf("%s: insert cotizacion: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cotizacion_items (cotizacion_id, producto_id, descripcion, cantidad, precio_unitario, importe)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare items: %w", op, err)
	}
	defer stmt.Close()

	for _, it := range q.Items {
		_, err := stmt.ExecContext(ctx, id, it.ProductID, it.Description, it.Quantity, it.UnitPrice, it.Amount)
		if err != nil {
			if isForeignKey(err) {
				return 0, fmt.Errorf("%s: producto id=%d: %w", op, it.ProductID, storage.ErrNotFound)
			}
			return 0, fmt.Errorf("%s: insert item producto id=%d: %w", op, it.ProductID, err)
		}
	}

	if folio != nil {
		_, err = tx.ExecContext(ctx, `UPDATE cotizaciones SET folio = ? WHERE id = ?`, folio(id), id)
		if err != nil {
			if isDuplicate(err) {
				return 0, fmt.Errorf("%s: folio %s: %w", op, folio(id), storage.ErrConflict)
			}
			return 0, fmt.Errorf("%s: folio: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetQuotation(ctx context.Context, id int64) (*storage.Quotation, error) {
	const op = "storage.mysql.GetQuotation"

	stmt := `SELECT ` + quotationColumns + `
		FROM cotizaciones c
		LEFT JOIN clientes cl ON cl.id = c.cliente_id
		WHERE c.id = ?`

	q, err := scanQuotation(s.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: cotizacion id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: cotizacion id=%d: %w", op, id, err)
	}

	items, err := s.quotationItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	q.Items = items

	return q, nil
}

func (s *Storage) quotationItems(ctx context.Context, quotationID int64) ([]storage.QuotationItem, error) {
	const op = "storage.mysql.quotationItems"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cotizacion_id, producto_id, descripcion, cantidad, precio_unitario, importe
		FROM cotizacion_items
		WHERE cotizacion_id = ?
		ORDER BY id ASC
	`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("%s: cotizacion id=%d: %w", op, quotationID, err)
	}
	defer rows.Close()

	var items []storage.QuotationItem
	for rows.Next() {
		var it storage.QuotationItem
		if err := rows.Scan(&it.ID, &it.QuotationID, &it.ProductID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Amount); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// ListQuotations returns quotation headers without items, newest first.
func (s *Storage) ListQuotations(ctx context.Context, filter storage.QuotationFilter) ([]*storage.Quotation, error) {
	const op = "storage.mysql.ListQuotations"

	var (
		where []string
		args  []any
	)

	if filter.Status != "" {
		where = append(where, "c.estatus = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where = append(where, "(c.folio LIKE ? OR cl.nombre LIKE ?)")
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	stmt := `SELECT ` + quotationColumns + `
		FROM cotizaciones c
		LEFT JOIN clientes cl ON cl.id = c.cliente_id`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY c.created_at DESC, c.id DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	stmt += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var quotations []*storage.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		quotations = append(quotations, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return quotations, nil
}

// UpdateQuotationStatus changes the status only if it is still `from`.
func (s *Storage) UpdateQuotationStatus(ctx context.Context, id int64, from, to string) error {
	const op = "storage.mysql.UpdateQuotationStatus"

	res, err := s.db.ExecContext(ctx, `UPDATE cotizaciones SET estatus = ? WHERE id = ? AND estatus = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("%s: cotizacion id=%d: %w", op, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: cotizacion id=%d %s -> %s: %w", op, id, from, to, storage.ErrConflict)
	}

	return nil
}

// MarkQuotationPaid moves an approved quotation to pagada and enqueues one allocation per item.
func (s *Storage) MarkQuotationPaid(ctx context.Context, p storage.QuotationPayment) ([]storage.Allocation, error) {
	const op = "storage.mysql.MarkQuotationPaid"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE cotizaciones
		SET estatus = 'pagada', fecha_pago = ?, prioridad = ?, premium = ?
		WHERE id = ? AND estatus = 'aprobada'
	`, p.PaidAt, p.Priority, p.Premium, p.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("%s: cotizacion id=%d: %w", op, p.QuotationID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("%s: rows affected: %w", op, err)
	} else if n == 0 {
		return nil, fmt.Errorf("%s: cotizacion id=%d no aprobada: %w", op, p.QuotationID, storage.ErrConflict)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, producto_id, cantidad FROM cotizacion_items WHERE cotizacion_id = ? ORDER BY id ASC
	`, p.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("%s: items: %w", op, err)
	}

	var allocations []storage.Allocation
	for rows.Next() {
		a := storage.Allocation{
			QuotationID: p.QuotationID,
			Priority:    p.Priority,
			Premium:     p.Premium,
			PaidAt:      p.PaidAt,
			Status:      "en_cola",
		}
		if err := rows.Scan(&a.QuotationItemID, &a.ProductID, &a.Quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: scan item: %w", op, err)
		}
		allocations = append(allocations, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: items rows: %w", op, err)
	}

	for i := range allocations {
		a := &allocations[i]

		res, err := tx.ExecContext(ctx, `
			INSERT INTO asignaciones_produccion
			(cotizacion_id, cotizacion_item_id, producto_id, cantidad, prioridad, premium, fecha_pago, estatus)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, a.QuotationID, a.QuotationItemID, a.ProductID, a.Quantity, a.Priority, a.Premium, a.PaidAt, a.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: insert asignacion item id=%d: %w", op, a.QuotationItemID, err)
		}

		if a.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("%s: last insert id: %w", op, err)
		}

		if err := addToPedidos(ctx, tx, a.ProductID, a.Quantity); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return allocations, nil
}
