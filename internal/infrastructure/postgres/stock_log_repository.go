package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockLogRepository = (*StockLogRepo)(nil)

// StockLogRepo implementación de StockLogRepository sobre PostgreSQL
// (usable con pool o tx). La tabla es solo-inserción.
type StockLogRepo struct {
	q Querier
}

// NewStockLogRepository construye el adaptador del stock log.
func NewStockLogRepository(q Querier) *StockLogRepo {
	return &StockLogRepo{q: q}
}

// Append inserta una entrada y devuelve su ID.
func (r *StockLogRepo) Append(ctx context.Context, e *entity.StockLogEntry) (int64, error) {
	query := `
		INSERT INTO stock_log
			(warehouse_id, product_id, variation_id, order_id, employee_id,
			 action_type, qty_change, qty_before, qty_after, reserved_before, reserved_after,
			 notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		e.WarehouseID, e.ProductID, variationKey(e.VariationID), e.OrderID, e.EmployeeID,
		e.ActionType, e.QtyChange, e.QtyBefore, e.QtyAfter, e.ReservedBefore, e.ReservedAfter,
		e.Notes,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("append stock log: %w", err)
	}
	return e.ID, nil
}

// List consulta entradas bajo un filtro, más recientes primero.
func (r *StockLogRepo) List(ctx context.Context, f repository.StockLogFilter) ([]*entity.StockLogEntry, error) {
	query := `
		SELECT id, warehouse_id, product_id, variation_id, order_id, employee_id,
		       action_type, qty_change, qty_before, qty_after, reserved_before, reserved_after,
		       notes, created_at
		FROM stock_log
		WHERE 1=1`
	args := []any{}
	query, args = appendLogFilters(query, args, f)
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, f.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock log: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockLogEntry
	for rows.Next() {
		var e entity.StockLogEntry
		var variationID int64
		if err := rows.Scan(
			&e.ID, &e.WarehouseID, &e.ProductID, &variationID, &e.OrderID, &e.EmployeeID,
			&e.ActionType, &e.QtyChange, &e.QtyBefore, &e.QtyAfter, &e.ReservedBefore, &e.ReservedAfter,
			&e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock log: %w", err)
		}
		e.VariationID = variationPtr(variationID)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SummaryByProduct agrega los movimientos bajo un filtro, por producto y
// categoría de acción, para el reporte de conciliación.
func (r *StockLogRepo) SummaryByProduct(ctx context.Context, f repository.StockLogFilter) ([]repository.ActionSummary, error) {
	query := `
		SELECT product_id,
		       COALESCE(SUM(CASE WHEN qty_change > 0 THEN qty_change ELSE 0 END), 0)  AS total_in,
		       COALESCE(SUM(CASE WHEN qty_change < 0 THEN -qty_change ELSE 0 END), 0) AS total_out,
		       COALESCE(SUM(CASE WHEN action_type IN ('manual_increase', 'manual_adjust') AND qty_change > 0
		                         THEN qty_change ELSE 0 END), 0)                      AS entries_in,
		       COALESCE(SUM(CASE WHEN action_type IN ('order_complete', 'status_change_to_complete', 'pos_sale')
		                         THEN -qty_change ELSE 0 END), 0)                     AS sales_out,
		       COALESCE(SUM(CASE WHEN action_type = 'order_restore' AND qty_change > 0
		                         THEN qty_change ELSE 0 END), 0)                      AS sales_returns,
		       COALESCE(SUM(CASE WHEN action_type = 'transfer_in' THEN qty_change ELSE 0 END), 0)   AS transfer_in,
		       COALESCE(SUM(CASE WHEN action_type = 'transfer_out' THEN -qty_change ELSE 0 END), 0) AS transfer_out
		FROM stock_log
		WHERE 1=1`
	args := []any{}
	query, args = appendLogFilters(query, args, f)
	query += ` GROUP BY product_id ORDER BY product_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary stock log: %w", err)
	}
	defer rows.Close()

	var list []repository.ActionSummary
	for rows.Next() {
		var s repository.ActionSummary
		if err := rows.Scan(
			&s.ProductID, &s.TotalIn, &s.TotalOut, &s.EntriesIn,
			&s.SalesOut, &s.SalesReturns, &s.TransferIn, &s.TransferOut,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// SumChangesAfter suma qty_change por producto para entradas posteriores a
// after (deriva saldos de apertura/cierre a partir del stock actual).
func (r *StockLogRepo) SumChangesAfter(ctx context.Context, warehouseID int64, after time.Time) (map[int64]decimal.Decimal, error) {
	query := `
		SELECT product_id, COALESCE(SUM(qty_change), 0)
		FROM stock_log
		WHERE ($1 = 0 OR warehouse_id = $1) AND created_at > $2
		GROUP BY product_id`
	rows, err := r.q.Query(ctx, query, warehouseID, after)
	if err != nil {
		return nil, fmt.Errorf("sum changes after: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var productID int64
		var sum decimal.Decimal
		if err := rows.Scan(&productID, &sum); err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}
		result[productID] = sum
	}
	return result, rows.Err()
}

// appendLogFilters agrega las cláusulas WHERE según el filtro, numerando los
// placeholders a partir de los args ya acumulados.
func appendLogFilters(query string, args []any, f repository.StockLogFilter) (string, []any) {
	if f.WarehouseID > 0 {
		query += fmt.Sprintf(` AND warehouse_id = $%d`, len(args)+1)
		args = append(args, f.WarehouseID)
	}
	if f.ProductID > 0 {
		query += fmt.Sprintf(` AND product_id = $%d`, len(args)+1)
		args = append(args, f.ProductID)
	}
	if f.OrderID > 0 {
		query += fmt.Sprintf(` AND order_id = $%d`, len(args)+1)
		args = append(args, f.OrderID)
	}
	if f.ActionType != "" {
		query += fmt.Sprintf(` AND action_type = $%d`, len(args)+1)
		args = append(args, f.ActionType)
	}
	if f.From != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args)+1)
		args = append(args, *f.From)
	}
	if f.To != nil {
		query += fmt.Sprintf(` AND created_at <= $%d`, len(args)+1)
		args = append(args, *f.To)
	}
	return query, args
}
