package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var _ repository.OrderStateRepository = (*OrderStateRepo)(nil)

// OrderStateRepo implementación de OrderStateRepository sobre PostgreSQL
// (usable con pool o tx).
type OrderStateRepo struct {
	q Querier
}

// NewOrderStateRepository construye el adaptador de estado de stock por pedido.
func NewOrderStateRepository(q Querier) *OrderStateRepo {
	return &OrderStateRepo{q: q}
}

// Get obtiene el estado de stock de un pedido. Devuelve (nil, nil) si el
// pedido aún no tiene estado registrado.
func (r *OrderStateRepo) Get(ctx context.Context, orderID int64) (*entity.OrderStockState, error) {
	query := `
		SELECT order_id, stock_tag, warehouse_id, updated_at
		FROM order_stock_state WHERE order_id = $1`
	var st entity.OrderStockState
	var tag string
	err := r.q.QueryRow(ctx, query, orderID).Scan(&st.OrderID, &tag, &st.WarehouseID, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order stock state: %w", err)
	}
	st.Tag = entity.NormalizeTag(tag)
	return &st, nil
}

// Save inserta o actualiza el estado de stock de un pedido.
func (r *OrderStateRepo) Save(ctx context.Context, st *entity.OrderStockState) error {
	query := `
		INSERT INTO order_stock_state (order_id, stock_tag, warehouse_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (order_id)
		DO UPDATE SET stock_tag = EXCLUDED.stock_tag, warehouse_id = EXCLUDED.warehouse_id, updated_at = now()`
	_, err := r.q.Exec(ctx, query, st.OrderID, string(st.Tag), st.WarehouseID)
	if err != nil {
		return fmt.Errorf("save order stock state: %w", err)
	}
	return nil
}
