package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus es el estado del pedido tal como lo reporta el sistema de
// pedidos externo (vocabulario fijo).
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusTrash      OrderStatus = "trash"
)

// StatusGroup agrupa los estados del pedido por su efecto sobre el stock.
type StatusGroup int

const (
	GroupNone StatusGroup = iota
	GroupReserving
	GroupConsuming
	GroupRestoring
)

// Group devuelve el grupo semántico del estado. ok=false si el estado no
// pertenece al vocabulario.
func (s OrderStatus) Group() (StatusGroup, bool) {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusOnHold:
		return GroupReserving, true
	case OrderStatusCompleted:
		return GroupConsuming, true
	case OrderStatusCancelled, OrderStatusRefunded, OrderStatusFailed, OrderStatusTrash:
		return GroupRestoring, true
	}
	return GroupNone, false
}

// StockTag es la etiqueta por pedido que registra qué mutación de stock ya
// se aplicó. Es el estado persistente de la máquina de estados.
type StockTag string

const (
	TagNone     StockTag = "none"
	TagReserved StockTag = "reserved"
	TagConsumed StockTag = "consumed"
	TagRestored StockTag = "restored"
)

// NormalizeTag trata el vacío (pedidos antiguos sin meta) como none.
func NormalizeTag(s string) StockTag {
	switch StockTag(s) {
	case TagReserved, TagConsumed, TagRestored:
		return StockTag(s)
	}
	return TagNone
}

// OrderStockState es el estado de stock que el motor guarda por pedido:
// la etiqueta y la bodega asignada (0 = sin asignar, se usa la primaria).
type OrderStockState struct {
	OrderID     int64
	Tag         StockTag
	WarehouseID int64
	UpdatedAt   time.Time
}

// OrderLine es una línea de pedido reportada por el sistema externo.
type OrderLine struct {
	ProductID   int64
	VariationID *int64
	Qty         decimal.Decimal
}
