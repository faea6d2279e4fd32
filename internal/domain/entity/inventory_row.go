package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRow representa el stock de un producto (y variación opcional) en
// una bodega. Qty es el disponible y ReservedQty el comprometido a pedidos en
// curso; son contadores independientes, no una partición de un total físico.
// La fila se crea de forma perezosa en la primera escritura y nunca se borra.
type InventoryRow struct {
	ID          int64
	WarehouseID int64
	ProductID   int64
	VariationID *int64
	Qty         decimal.Decimal
	ReservedQty decimal.Decimal
	Price       *decimal.Decimal // override opcional; nil hereda el precio del catálogo
	MinQty      decimal.Decimal  // umbral de reposición
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TotalPhysicalQty devuelve qty + reserved_qty.
func (r *InventoryRow) TotalPhysicalQty() decimal.Decimal {
	return r.Qty.Add(r.ReservedQty)
}
