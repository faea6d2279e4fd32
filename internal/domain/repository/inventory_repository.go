package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryRepository define el puerto para el libro de inventario por
// (bodega, producto, variación). Get y GetForUpdate devuelven (nil, nil)
// cuando la fila no existe; los consumidores tratan la ausencia como
// qty=0, reserved=0.
type InventoryRepository interface {
	Get(ctx context.Context, warehouseID, productID int64, variationID *int64) (*entity.InventoryRow, error)

	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para serializar
	// lecturas-modificaciones concurrentes sobre la misma fila.
	GetForUpdate(ctx context.Context, warehouseID, productID int64, variationID *int64) (*entity.InventoryRow, error)

	Upsert(ctx context.Context, row *entity.InventoryRow) error
	ListByWarehouse(ctx context.Context, warehouseID int64, limit, offset int) ([]*entity.InventoryRow, error)

	// ListBelowMin devuelve filas con qty <= min_qty (umbral de reposición).
	ListBelowMin(ctx context.Context, warehouseID int64) ([]*entity.InventoryRow, error)

	// CurrentQtyByProduct devuelve qty actual por producto. warehouseID = 0
	// agrega todas las bodegas.
	CurrentQtyByProduct(ctx context.Context, warehouseID int64) (map[int64]decimal.Decimal, error)
}
