package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockLogUseCase consultas sobre el registro de auditoría: listado filtrado
// y reporte de conciliación por rango de fechas.
type StockLogUseCase struct {
	logRepo repository.StockLogRepository
	invRepo repository.InventoryRepository
}

// NewStockLogUseCase construye el caso de uso de consultas del log.
func NewStockLogUseCase(logRepo repository.StockLogRepository, invRepo repository.InventoryRepository) *StockLogUseCase {
	return &StockLogUseCase{logRepo: logRepo, invRepo: invRepo}
}

// List devuelve entradas del log bajo el filtro, más recientes primero.
func (uc *StockLogUseCase) List(ctx context.Context, f repository.StockLogFilter) ([]*entity.StockLogEntry, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return uc.logRepo.List(ctx, f)
}

// ReconciliationRow fila del reporte de conciliación de un producto sobre un
// rango de fechas. Los saldos de apertura y cierre se derivan del stock
// actual menos los deltas del log posteriores a cada borde del rango;
// Discrepancy cruza el cierre derivado contra apertura + entradas - salidas
// y debe ser cero cuando todo movimiento del rango pasó por el libro.
type ReconciliationRow struct {
	ProductID       int64
	OpeningQty      decimal.Decimal
	ClosingQty      decimal.Decimal
	TotalIn         decimal.Decimal
	TotalOut        decimal.Decimal
	EntriesIn       decimal.Decimal
	SalesOut        decimal.Decimal
	SalesReturns    decimal.Decimal
	TransferIn      decimal.Decimal
	TransferOut     decimal.Decimal
	ExpectedClosing decimal.Decimal
	Discrepancy     decimal.Decimal
}

// Reconcile calcula el reporte de conciliación por producto para una bodega
// (0 = todas) y un rango [from, to].
func (uc *StockLogUseCase) Reconcile(ctx context.Context, warehouseID int64, from, to time.Time) ([]ReconciliationRow, error) {
	if warehouseID < 0 || to.Before(from) {
		return nil, domain.ErrInvalidInput
	}

	current, err := uc.invRepo.CurrentQtyByProduct(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	afterStart, err := uc.logRepo.SumChangesAfter(ctx, warehouseID, from)
	if err != nil {
		return nil, err
	}
	afterEnd, err := uc.logRepo.SumChangesAfter(ctx, warehouseID, to)
	if err != nil {
		return nil, err
	}
	summaries, err := uc.logRepo.SummaryByProduct(ctx, repository.StockLogFilter{
		WarehouseID: warehouseID,
		From:        &from,
		To:          &to,
	})
	if err != nil {
		return nil, err
	}

	qtyOrZero := func(m map[int64]decimal.Decimal, productID int64) decimal.Decimal {
		if v, ok := m[productID]; ok {
			return v
		}
		return decimal.Zero
	}

	rows := make([]ReconciliationRow, 0, len(summaries))
	for _, s := range summaries {
		cur := qtyOrZero(current, s.ProductID)
		opening := cur.Sub(qtyOrZero(afterStart, s.ProductID))
		closing := cur.Sub(qtyOrZero(afterEnd, s.ProductID))
		expected := opening.Add(s.TotalIn).Sub(s.TotalOut)
		rows = append(rows, ReconciliationRow{
			ProductID:       s.ProductID,
			OpeningQty:      opening,
			ClosingQty:      closing,
			TotalIn:         s.TotalIn,
			TotalOut:        s.TotalOut,
			EntriesIn:       s.EntriesIn,
			SalesOut:        s.SalesOut,
			SalesReturns:    s.SalesReturns,
			TransferIn:      s.TransferIn,
			TransferOut:     s.TransferOut,
			ExpectedClosing: expected,
			Discrepancy:     expected.Sub(closing),
		})
	}
	return rows, nil
}
