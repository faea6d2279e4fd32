package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLogFilter filtros de consulta del stock log. Los campos en cero se
// ignoran.
type StockLogFilter struct {
	WarehouseID int64
	ProductID   int64
	OrderID     int64
	ActionType  string
	From        *time.Time
	To          *time.Time
	Limit       int
}

// ActionSummary agregado por producto de los movimientos bajo un filtro,
// desglosado por categoría de acción (para el reporte de conciliación).
type ActionSummary struct {
	ProductID    int64
	TotalIn      decimal.Decimal
	TotalOut     decimal.Decimal
	EntriesIn    decimal.Decimal
	SalesOut     decimal.Decimal
	SalesReturns decimal.Decimal
	TransferIn   decimal.Decimal
	TransferOut  decimal.Decimal
}

// StockLogRepository define el puerto del registro de auditoría: solo
// inserción y consultas, nunca update ni delete.
type StockLogRepository interface {
	Append(ctx context.Context, e *entity.StockLogEntry) (int64, error)
	List(ctx context.Context, f StockLogFilter) ([]*entity.StockLogEntry, error)
	SummaryByProduct(ctx context.Context, f StockLogFilter) ([]ActionSummary, error)

	// SumChangesAfter devuelve la suma de qty_change por producto para las
	// entradas posteriores a after (usado para derivar saldos de apertura y
	// cierre a partir del stock actual).
	SumChangesAfter(ctx context.Context, warehouseID int64, after time.Time) (map[int64]decimal.Decimal, error)
}
