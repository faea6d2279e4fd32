package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL
// (usable con pool o tx). La clave única es (warehouse_id, product_id,
// variation_id), con variation_id = 0 para productos sin variación.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador del libro de inventario.
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `id, warehouse_id, product_id, variation_id, qty, reserved_qty, price, min_qty, created_at, updated_at`

// Get obtiene la fila de inventario de un producto en una bodega.
// Devuelve (nil, nil) si no existe.
func (r *InventoryRepo) Get(ctx context.Context, warehouseID, productID int64, variationID *int64) (*entity.InventoryRow, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM warehouse_inventory
		WHERE warehouse_id = $1 AND product_id = $2 AND variation_id = $3`
	return r.scanOne(r.q.QueryRow(ctx, query, warehouseID, productID, variationKey(variationID)), "get inventory")
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE) para
// serializar mutaciones concurrentes. Devuelve (nil, nil) si no existe.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, warehouseID, productID int64, variationID *int64) (*entity.InventoryRow, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM warehouse_inventory
		WHERE warehouse_id = $1 AND product_id = $2 AND variation_id = $3
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, warehouseID, productID, variationKey(variationID)), "get inventory for update")
}

// Upsert inserta o actualiza la fila completa por su clave única.
func (r *InventoryRepo) Upsert(ctx context.Context, row *entity.InventoryRow) error {
	query := `
		INSERT INTO warehouse_inventory
			(warehouse_id, product_id, variation_id, qty, reserved_qty, price, min_qty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (warehouse_id, product_id, variation_id)
		DO UPDATE SET
			qty = EXCLUDED.qty,
			reserved_qty = EXCLUDED.reserved_qty,
			price = EXCLUDED.price,
			min_qty = EXCLUDED.min_qty,
			updated_at = now()
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		row.WarehouseID, row.ProductID, variationKey(row.VariationID),
		row.Qty, row.ReservedQty, row.Price, row.MinQty,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}

// ListByWarehouse lista las filas de inventario de una bodega con paginación.
func (r *InventoryRepo) ListByWarehouse(ctx context.Context, warehouseID int64, limit, offset int) ([]*entity.InventoryRow, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM warehouse_inventory
		WHERE warehouse_id = $1
		ORDER BY product_id, variation_id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return r.scanAll(rows)
}

// ListBelowMin devuelve filas con qty <= min_qty (umbral de reposición).
// Solo filas con min_qty > 0 participan del reporte.
func (r *InventoryRepo) ListBelowMin(ctx context.Context, warehouseID int64) ([]*entity.InventoryRow, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM warehouse_inventory
		WHERE warehouse_id = $1 AND min_qty > 0 AND qty <= min_qty
		ORDER BY product_id, variation_id`
	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list below min: %w", err)
	}
	return r.scanAll(rows)
}

// CurrentQtyByProduct devuelve qty actual agregada por producto.
// warehouseID = 0 suma todas las bodegas.
func (r *InventoryRepo) CurrentQtyByProduct(ctx context.Context, warehouseID int64) (map[int64]decimal.Decimal, error) {
	query := `
		SELECT product_id, COALESCE(SUM(qty), 0)
		FROM warehouse_inventory
		WHERE ($1 = 0 OR warehouse_id = $1)
		GROUP BY product_id`
	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("current qty by product: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var productID int64
		var qty decimal.Decimal
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("scan current qty: %w", err)
		}
		result[productID] = qty
	}
	return result, rows.Err()
}

func (r *InventoryRepo) scanOne(row pgx.Row, op string) (*entity.InventoryRow, error) {
	var inv entity.InventoryRow
	var variationID int64
	err := row.Scan(
		&inv.ID, &inv.WarehouseID, &inv.ProductID, &variationID,
		&inv.Qty, &inv.ReservedQty, &inv.Price, &inv.MinQty,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	inv.VariationID = variationPtr(variationID)
	return &inv, nil
}

func (r *InventoryRepo) scanAll(rows pgx.Rows) ([]*entity.InventoryRow, error) {
	defer rows.Close()
	var list []*entity.InventoryRow
	for rows.Next() {
		var inv entity.InventoryRow
		var variationID int64
		if err := rows.Scan(
			&inv.ID, &inv.WarehouseID, &inv.ProductID, &variationID,
			&inv.Qty, &inv.ReservedQty, &inv.Price, &inv.MinQty,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		inv.VariationID = variationPtr(variationID)
		list = append(list, &inv)
	}
	return list, rows.Err()
}
