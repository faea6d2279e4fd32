package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vocabulario cerrado de tipos de acción persistidos en el stock log.
const (
	ActionOrderReserve           = "order_reserve"
	ActionOrderComplete          = "order_complete"
	ActionOrderRestore           = "order_restore"
	ActionStatusChangeToReserve  = "status_change_to_reserve"
	ActionStatusChangeToComplete = "status_change_to_complete"
	ActionOrderItemEdit          = "order_item_edit"
	ActionManualIncrease         = "manual_increase"
	ActionManualDecrease         = "manual_decrease"
	ActionManualReserveIncrease  = "manual_reserve_increase"
	ActionManualReserveDecrease  = "manual_reserve_decrease"
	ActionManualAdjust           = "manual_adjust"
	ActionTransferIn             = "transfer_in"
	ActionTransferOut            = "transfer_out"
	ActionPOSSale                = "pos_sale"
	ActionPOSReserve             = "pos_reserve"
)

// StockLogEntry es una fila inmutable del registro de auditoría. Cada mutación
// del inventario produce exactamente una entrada con el estado antes/después.
// Solo se agrega; nunca se actualiza ni se borra.
type StockLogEntry struct {
	ID             int64
	WarehouseID    int64
	ProductID      int64
	VariationID    *int64
	OrderID        *int64
	EmployeeID     *int64
	ActionType     string
	QtyChange      decimal.Decimal // delta con signo aplicado a qty
	QtyBefore      decimal.Decimal
	QtyAfter       decimal.Decimal
	ReservedBefore decimal.Decimal
	ReservedAfter  decimal.Decimal
	Notes          string
	CreatedAt      time.Time
}
