package dto

import "github.com/shopspring/decimal"

// TransferRequest body para POST /api/transfers.
type TransferRequest struct {
	FromWarehouseID int64           `json:"from_warehouse_id" validate:"required,gt=0"`
	ToWarehouseID   int64           `json:"to_warehouse_id" validate:"required,gt=0"`
	ProductID       int64           `json:"product_id" validate:"required,gt=0"`
	VariationID     *int64          `json:"variation_id,omitempty"`
	Qty             decimal.Decimal `json:"qty" validate:"required"`
	Notes           string          `json:"notes,omitempty"`
}

// BulkTransferRequest body para POST /api/transfers/bulk.
type BulkTransferRequest struct {
	Items []TransferRequest `json:"items" validate:"required,min=1,dive"`
}

// BulkTransferResponse fallos por índice de una transferencia masiva.
type BulkTransferResponse struct {
	Processed int                 `json:"processed"`
	Errors    []ItemErrorResponse `json:"errors,omitempty"`
}
