package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// LedgerUseCase es el libro de inventario: lecturas y escrituras sobre la
// fila (bodega, producto, variación), cada mutación con su entrada en el
// stock log y push al catálogo cuando cambia qty en la bodega primaria.
type LedgerUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	invRepo       repository.InventoryRepository
	catalog       CatalogService
	log           *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. catalog puede ser nil si la
// tienda no tiene catálogo configurado.
func NewLedgerUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	invRepo repository.InventoryRepository,
	catalog CatalogService,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		invRepo:       invRepo,
		catalog:       catalog,
		log:           log,
	}
}

// UpsertInput entrada para una escritura parcial de la fila de inventario.
// Solo los campos no-nil se escriben; los omitidos conservan su valor.
type UpsertInput struct {
	WarehouseID int64
	ProductID   int64
	VariationID *int64
	Qty         *decimal.Decimal
	ReservedQty *decimal.Decimal
	Price       *decimal.Decimal
	MinQty      *decimal.Decimal
	EmployeeID  *int64
	Notes       string
}

// AdjustInput entrada para un ajuste por delta sobre qty y/o reserved_qty.
type AdjustInput struct {
	WarehouseID   int64
	ProductID     int64
	VariationID   *int64
	QtyDelta      decimal.Decimal
	ReservedDelta decimal.Decimal
	EmployeeID    *int64
	Notes         string
}

// ItemResult resultado por ítem de una operación masiva.
type ItemResult struct {
	Index int
	Row   *entity.InventoryRow
	Err   error
}

// GetRow devuelve la fila o (nil, nil) si no existe.
func (uc *LedgerUseCase) GetRow(ctx context.Context, warehouseID, productID int64, variationID *int64) (*entity.InventoryRow, error) {
	if warehouseID <= 0 || productID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.invRepo.Get(ctx, warehouseID, productID, variationID)
}

// GetAvailableQty devuelve qty disponible; 0 si la fila no existe.
func (uc *LedgerUseCase) GetAvailableQty(ctx context.Context, warehouseID, productID int64, variationID *int64) (decimal.Decimal, error) {
	row, err := uc.GetRow(ctx, warehouseID, productID, variationID)
	if err != nil {
		return decimal.Zero, err
	}
	if row == nil {
		return decimal.Zero, nil
	}
	return row.Qty, nil
}

// GetTotalPhysicalQty devuelve qty + reserved_qty; 0 si la fila no existe.
func (uc *LedgerUseCase) GetTotalPhysicalQty(ctx context.Context, warehouseID, productID int64, variationID *int64) (decimal.Decimal, error) {
	row, err := uc.GetRow(ctx, warehouseID, productID, variationID)
	if err != nil {
		return decimal.Zero, err
	}
	if row == nil {
		return decimal.Zero, nil
	}
	return row.TotalPhysicalQty(), nil
}

// ListByWarehouse lista el inventario de una bodega con paginación.
func (uc *LedgerUseCase) ListByWarehouse(ctx context.Context, warehouseID int64, limit, offset int) ([]*entity.InventoryRow, error) {
	if warehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.invRepo.ListByWarehouse(ctx, warehouseID, limit, offset)
}

// ListBelowMin lista filas en o bajo su umbral de reposición (min_qty).
func (uc *LedgerUseCase) ListBelowMin(ctx context.Context, warehouseID int64) ([]*entity.InventoryRow, error) {
	if warehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.invRepo.ListBelowMin(ctx, warehouseID)
}

// Upsert escribe la fila con semántica parcial: al menos un campo debe venir;
// los valores escritos nunca pueden ser negativos. Si cambia qty o reserved
// registra la entrada correspondiente en el stock log, y si la bodega es la
// primaria y se pasó qty dispara el push al catálogo (salvo supresión).
func (uc *LedgerUseCase) Upsert(ctx context.Context, input UpsertInput) (*entity.InventoryRow, error) {
	if input.WarehouseID <= 0 || input.ProductID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.Qty == nil && input.ReservedQty == nil && input.Price == nil && input.MinQty == nil {
		return nil, domain.ErrInvalidInput
	}
	if input.Qty != nil && input.Qty.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if input.ReservedQty != nil && input.ReservedQty.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	wh, err := uc.warehouseRepo.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	var result *entity.InventoryRow
	err = uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		logRepo repository.StockLogRepository,
		_ repository.OrderStateRepository,
	) error {
		row, err := invRepo.GetForUpdate(ctx, input.WarehouseID, input.ProductID, input.VariationID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &entity.InventoryRow{
				WarehouseID: input.WarehouseID,
				ProductID:   input.ProductID,
				VariationID: input.VariationID,
				Qty:         decimal.Zero,
				ReservedQty: decimal.Zero,
				MinQty:      decimal.Zero,
			}
		}
		qtyBefore, reservedBefore := row.Qty, row.ReservedQty

		if input.Qty != nil {
			row.Qty = *input.Qty
		}
		if input.ReservedQty != nil {
			row.ReservedQty = *input.ReservedQty
		}
		if input.Price != nil {
			row.Price = input.Price
		}
		if input.MinQty != nil {
			row.MinQty = *input.MinQty
		}
		row.UpdatedAt = time.Now()
		if err := invRepo.Upsert(ctx, row); err != nil {
			return err
		}

		qtyDelta := row.Qty.Sub(qtyBefore)
		reservedDelta := row.ReservedQty.Sub(reservedBefore)
		if qtyDelta.IsZero() && reservedDelta.IsZero() {
			result = row
			return nil
		}
		entry := &entity.StockLogEntry{
			WarehouseID:    row.WarehouseID,
			ProductID:      row.ProductID,
			VariationID:    row.VariationID,
			EmployeeID:     input.EmployeeID,
			ActionType:     manualAction(qtyDelta, reservedDelta),
			QtyChange:      qtyDelta,
			QtyBefore:      qtyBefore,
			QtyAfter:       row.Qty,
			ReservedBefore: reservedBefore,
			ReservedAfter:  row.ReservedQty,
			Notes:          input.Notes,
		}
		if _, err := logRepo.Append(ctx, entry); err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.Qty != nil && wh.IsPrimary {
		uc.pushCatalog(ctx, result)
	}
	return result, nil
}

// Adjust aplica deltas sobre qty y/o reserved_qty. A diferencia del flujo de
// pedidos, aquí un delta que dejaría el contador negativo es un error, no un
// piso en cero.
func (uc *LedgerUseCase) Adjust(ctx context.Context, input AdjustInput) (*entity.InventoryRow, error) {
	if input.WarehouseID <= 0 || input.ProductID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.QtyDelta.IsZero() && input.ReservedDelta.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	wh, err := uc.warehouseRepo.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	var result *entity.InventoryRow
	err = uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		logRepo repository.StockLogRepository,
		_ repository.OrderStateRepository,
	) error {
		row, err := invRepo.GetForUpdate(ctx, input.WarehouseID, input.ProductID, input.VariationID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &entity.InventoryRow{
				WarehouseID: input.WarehouseID,
				ProductID:   input.ProductID,
				VariationID: input.VariationID,
				Qty:         decimal.Zero,
				ReservedQty: decimal.Zero,
				MinQty:      decimal.Zero,
			}
		}
		qtyBefore, reservedBefore := row.Qty, row.ReservedQty

		newQty := row.Qty.Add(input.QtyDelta)
		newReserved := row.ReservedQty.Add(input.ReservedDelta)
		if newQty.IsNegative() || newReserved.IsNegative() {
			return domain.ErrInsufficientStock
		}
		row.Qty = newQty
		row.ReservedQty = newReserved
		row.UpdatedAt = time.Now()
		if err := invRepo.Upsert(ctx, row); err != nil {
			return err
		}

		entry := &entity.StockLogEntry{
			WarehouseID:    row.WarehouseID,
			ProductID:      row.ProductID,
			VariationID:    row.VariationID,
			EmployeeID:     input.EmployeeID,
			ActionType:     manualAction(input.QtyDelta, input.ReservedDelta),
			QtyChange:      input.QtyDelta,
			QtyBefore:      qtyBefore,
			QtyAfter:       row.Qty,
			ReservedBefore: reservedBefore,
			ReservedAfter:  row.ReservedQty,
			Notes:          input.Notes,
		}
		if _, err := logRepo.Append(ctx, entry); err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !input.QtyDelta.IsZero() && wh.IsPrimary {
		uc.pushCatalog(ctx, result)
	}
	return result, nil
}

// BulkUpsert procesa cada ítem de forma aislada: los fallos no abortan el
// resto y se reportan por índice.
func (uc *LedgerUseCase) BulkUpsert(ctx context.Context, items []UpsertInput) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for i, item := range items {
		row, err := uc.Upsert(ctx, item)
		results = append(results, ItemResult{Index: i, Row: row, Err: err})
	}
	return results
}

// BulkAdjust procesa cada ajuste de forma aislada.
func (uc *LedgerUseCase) BulkAdjust(ctx context.Context, items []AdjustInput) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for i, item := range items {
		row, err := uc.Adjust(ctx, item)
		results = append(results, ItemResult{Index: i, Row: row, Err: err})
	}
	return results
}

// manualAction deriva el tipo de acción manual a partir de los deltas
// aplicados a qty y reserved.
func manualAction(qtyDelta, reservedDelta decimal.Decimal) string {
	switch {
	case !qtyDelta.IsZero() && !reservedDelta.IsZero():
		return entity.ActionManualAdjust
	case qtyDelta.IsPositive():
		return entity.ActionManualIncrease
	case qtyDelta.IsNegative():
		return entity.ActionManualDecrease
	case reservedDelta.IsPositive():
		return entity.ActionManualReserveIncrease
	case reservedDelta.IsNegative():
		return entity.ActionManualReserveDecrease
	default:
		return entity.ActionManualAdjust
	}
}

// pushCatalog empuja el qty de la bodega primaria al catálogo. Es best
// effort: un fallo se registra y no revierte la mutación ya confirmada.
func (uc *LedgerUseCase) pushCatalog(ctx context.Context, row *entity.InventoryRow) {
	if uc.catalog == nil || row == nil || CatalogSyncSuppressed(ctx) {
		return
	}
	inStock := row.Qty.IsPositive()
	if err := uc.catalog.SetManagedStock(ctx, row.ProductID, row.VariationID, row.Qty, inStock); err != nil {
		uc.log.Warn().
			Err(err).
			Int64("product_id", row.ProductID).
			Str("qty", row.Qty.String()).
			Msg("push de stock al catálogo falló")
	}
}
