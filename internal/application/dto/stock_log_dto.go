package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLogQuery filtros de consulta para GET /api/stock-log.
type StockLogQuery struct {
	WarehouseID int64      `query:"warehouse_id"`
	ProductID   int64      `query:"product_id"`
	OrderID     int64      `query:"order_id"`
	ActionType  string     `query:"action_type"`
	From        *time.Time `query:"from"`
	To          *time.Time `query:"to"`
	Limit       int        `query:"limit"`
}

// StockLogEntryResponse salida de una entrada del stock log.
type StockLogEntryResponse struct {
	ID             int64           `json:"id"`
	WarehouseID    int64           `json:"warehouse_id"`
	ProductID      int64           `json:"product_id"`
	VariationID    *int64          `json:"variation_id,omitempty"`
	OrderID        *int64          `json:"order_id,omitempty"`
	EmployeeID     *int64          `json:"employee_id,omitempty"`
	ActionType     string          `json:"action_type"`
	QtyChange      decimal.Decimal `json:"qty_change"`
	QtyBefore      decimal.Decimal `json:"qty_before"`
	QtyAfter       decimal.Decimal `json:"qty_after"`
	ReservedBefore decimal.Decimal `json:"reserved_before"`
	ReservedAfter  decimal.Decimal `json:"reserved_after"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StockLogListResponse listado del stock log.
type StockLogListResponse struct {
	Items []StockLogEntryResponse `json:"items"`
}

// ReconciliationRowResponse fila del reporte de conciliación.
type ReconciliationRowResponse struct {
	ProductID       int64           `json:"product_id"`
	OpeningQty      decimal.Decimal `json:"opening_qty"`
	ClosingQty      decimal.Decimal `json:"closing_qty"`
	TotalIn         decimal.Decimal `json:"total_in"`
	TotalOut        decimal.Decimal `json:"total_out"`
	EntriesIn       decimal.Decimal `json:"entries_in"`
	SalesOut        decimal.Decimal `json:"sales_out"`
	SalesReturns    decimal.Decimal `json:"sales_returns"`
	TransferIn      decimal.Decimal `json:"transfer_in"`
	TransferOut     decimal.Decimal `json:"transfer_out"`
	ExpectedClosing decimal.Decimal `json:"expected_closing"`
	Discrepancy     decimal.Decimal `json:"discrepancy"`
}

// ReconciliationResponse reporte de conciliación por rango de fechas.
type ReconciliationResponse struct {
	WarehouseID int64                       `json:"warehouse_id"`
	From        time.Time                   `json:"from"`
	To          time.Time                   `json:"to"`
	Rows        []ReconciliationRowResponse `json:"rows"`
}
