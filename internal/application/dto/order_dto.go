package dto

import "github.com/shopspring/decimal"

// OrderLineDTO línea de pedido reportada por el sistema de pedidos.
type OrderLineDTO struct {
	ProductID   int64           `json:"product_id" validate:"required,gt=0"`
	VariationID *int64          `json:"variation_id,omitempty"`
	Qty         decimal.Decimal `json:"qty" validate:"required"`
}

// OrderStatusEventRequest body para POST /api/orders/events/status.
type OrderStatusEventRequest struct {
	OrderID     int64          `json:"order_id" validate:"required,gt=0"`
	Status      string         `json:"status" validate:"required"`
	Lines       []OrderLineDTO `json:"lines" validate:"dive"`
	WarehouseID int64          `json:"warehouse_id,omitempty"`
}

// OrderItemEventRequest body para POST /api/orders/events/item. Delta es
// newQty - oldQty; para un borrado, enviar -oldQty.
type OrderItemEventRequest struct {
	OrderID     int64           `json:"order_id" validate:"required,gt=0"`
	ProductID   int64           `json:"product_id" validate:"required,gt=0"`
	VariationID *int64          `json:"variation_id,omitempty"`
	Delta       decimal.Decimal `json:"delta"`
}

// POSOrderRequest body para POST /api/orders/pos.
type POSOrderRequest struct {
	OrderID     int64          `json:"order_id" validate:"required,gt=0"`
	WarehouseID int64          `json:"warehouse_id" validate:"required,gt=0"`
	Reserve     bool           `json:"reserve"`
	Lines       []OrderLineDTO `json:"lines" validate:"required,min=1,dive"`
}

// OrderEventResponse resultado de procesar un evento de pedido.
type OrderEventResponse struct {
	OrderID int64               `json:"order_id"`
	Applied bool                `json:"applied"`
	Errors  []ItemErrorResponse `json:"errors,omitempty"`
}
