package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpsertInventoryRequest body para PUT /api/inventory. Semántica parcial:
// solo los campos presentes se escriben.
type UpsertInventoryRequest struct {
	WarehouseID int64            `json:"warehouse_id" validate:"required,gt=0"`
	ProductID   int64            `json:"product_id" validate:"required,gt=0"`
	VariationID *int64           `json:"variation_id,omitempty"`
	Qty         *decimal.Decimal `json:"qty,omitempty"`
	ReservedQty *decimal.Decimal `json:"reserved_qty,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	MinQty      *decimal.Decimal `json:"min_qty,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// AdjustInventoryRequest body para POST /api/inventory/adjust (ajuste por
// delta sobre qty y/o reserved_qty).
type AdjustInventoryRequest struct {
	WarehouseID   int64           `json:"warehouse_id" validate:"required,gt=0"`
	ProductID     int64           `json:"product_id" validate:"required,gt=0"`
	VariationID   *int64          `json:"variation_id,omitempty"`
	QtyDelta      decimal.Decimal `json:"qty_delta"`
	ReservedDelta decimal.Decimal `json:"reserved_delta"`
	Notes         string          `json:"notes,omitempty"`
}

// BulkUpsertInventoryRequest body para PUT /api/inventory/bulk.
type BulkUpsertInventoryRequest struct {
	Items []UpsertInventoryRequest `json:"items" validate:"required,min=1,dive"`
}

// BulkAdjustInventoryRequest body para POST /api/inventory/adjust/bulk.
type BulkAdjustInventoryRequest struct {
	Items []AdjustInventoryRequest `json:"items" validate:"required,min=1,dive"`
}

// InventoryRowResponse salida de una fila de inventario.
type InventoryRowResponse struct {
	ID          int64            `json:"id"`
	WarehouseID int64            `json:"warehouse_id"`
	ProductID   int64            `json:"product_id"`
	VariationID *int64           `json:"variation_id,omitempty"`
	Qty         decimal.Decimal  `json:"qty"`
	ReservedQty decimal.Decimal  `json:"reserved_qty"`
	TotalQty    decimal.Decimal  `json:"total_qty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	MinQty      decimal.Decimal  `json:"min_qty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// InventoryListResponse lista paginada de filas de inventario.
type InventoryListResponse struct {
	Items []InventoryRowResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// BulkInventoryResponse resultado de una operación masiva: filas escritas y
// fallos por índice.
type BulkInventoryResponse struct {
	Items  []InventoryRowResponse `json:"items"`
	Errors []ItemErrorResponse    `json:"errors,omitempty"`
}
