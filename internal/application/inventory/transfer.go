package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// TransferUseCase mueve cantidad disponible entre bodegas: una transacción,
// dos mutaciones y un par transfer_out/transfer_in en el stock log. Las
// reservas no se tocan; solo viaja stock disponible.
type TransferUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	catalog       CatalogService
	log           *logger.Logger
}

// NewTransferUseCase construye el motor de transferencias.
func NewTransferUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	catalog CatalogService,
	log *logger.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		catalog:       catalog,
		log:           log,
	}
}

// TransferInput entrada de una transferencia simple.
type TransferInput struct {
	FromWarehouseID int64
	ToWarehouseID   int64
	ProductID       int64
	VariationID     *int64
	Qty             decimal.Decimal
	EmployeeID      *int64
	Notes           string
}

// TransferResult resultado por ítem de una transferencia masiva.
type TransferResult struct {
	Index int
	Err   error
}

// Transfer ejecuta la transferencia como unidad atómica: o persisten ambas
// mutaciones con sus dos entradas de log, o ninguna.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) error {
	if input.FromWarehouseID <= 0 || input.ToWarehouseID <= 0 || input.ProductID <= 0 {
		return domain.ErrInvalidInput
	}
	if input.FromWarehouseID == input.ToWarehouseID || !input.Qty.IsPositive() {
		return domain.ErrInvalidInput
	}

	fromWh, err := uc.warehouseRepo.GetByID(ctx, input.FromWarehouseID)
	if err != nil {
		return err
	}
	toWh, err := uc.warehouseRepo.GetByID(ctx, input.ToWarehouseID)
	if err != nil {
		return err
	}
	if fromWh == nil || toWh == nil {
		return domain.ErrNotFound
	}

	transferID := uuid.New().String()
	notes := fmt.Sprintf("transfer %s", transferID)
	if input.Notes != "" {
		notes = fmt.Sprintf("%s: %s", notes, input.Notes)
	}

	var fromRow, toRow *entity.InventoryRow
	err = uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		logRepo repository.StockLogRepository,
		_ repository.OrderStateRepository,
	) error {
		// Bloquear ambas filas en orden estable de bodega para evitar
		// deadlocks entre transferencias cruzadas.
		first, second := input.FromWarehouseID, input.ToWarehouseID
		if second < first {
			first, second = second, first
		}
		firstRow, err := invRepo.GetForUpdate(ctx, first, input.ProductID, input.VariationID)
		if err != nil {
			return err
		}
		secondRow, err := invRepo.GetForUpdate(ctx, second, input.ProductID, input.VariationID)
		if err != nil {
			return err
		}
		origin, dest := firstRow, secondRow
		if first != input.FromWarehouseID {
			origin, dest = secondRow, firstRow
		}
		if origin == nil {
			return domain.ErrInsufficientStock
		}
		if origin.Qty.LessThan(input.Qty) {
			return domain.ErrInsufficientStock
		}
		if dest == nil {
			dest = &entity.InventoryRow{
				WarehouseID: input.ToWarehouseID,
				ProductID:   input.ProductID,
				VariationID: input.VariationID,
				Qty:         decimal.Zero,
				ReservedQty: decimal.Zero,
				MinQty:      decimal.Zero,
			}
		}

		now := time.Now()
		originBefore := origin.Qty
		destBefore := dest.Qty
		origin.Qty = origin.Qty.Sub(input.Qty)
		dest.Qty = dest.Qty.Add(input.Qty)
		origin.UpdatedAt = now
		dest.UpdatedAt = now

		if err := invRepo.Upsert(ctx, origin); err != nil {
			return err
		}
		if err := invRepo.Upsert(ctx, dest); err != nil {
			return err
		}

		outEntry := &entity.StockLogEntry{
			WarehouseID:    input.FromWarehouseID,
			ProductID:      input.ProductID,
			VariationID:    input.VariationID,
			EmployeeID:     input.EmployeeID,
			ActionType:     entity.ActionTransferOut,
			QtyChange:      input.Qty.Neg(),
			QtyBefore:      originBefore,
			QtyAfter:       origin.Qty,
			ReservedBefore: origin.ReservedQty,
			ReservedAfter:  origin.ReservedQty,
			Notes:          notes,
		}
		if _, err := logRepo.Append(ctx, outEntry); err != nil {
			return err
		}
		inEntry := &entity.StockLogEntry{
			WarehouseID:    input.ToWarehouseID,
			ProductID:      input.ProductID,
			VariationID:    input.VariationID,
			EmployeeID:     input.EmployeeID,
			ActionType:     entity.ActionTransferIn,
			QtyChange:      input.Qty,
			QtyBefore:      destBefore,
			QtyAfter:       dest.Qty,
			ReservedBefore: dest.ReservedQty,
			ReservedAfter:  dest.ReservedQty,
			Notes:          notes,
		}
		if _, err := logRepo.Append(ctx, inEntry); err != nil {
			return err
		}
		fromRow, toRow = origin, dest
		return nil
	})
	if err != nil {
		return err
	}

	if fromWh.IsPrimary {
		uc.pushCatalog(ctx, fromRow)
	}
	if toWh.IsPrimary {
		uc.pushCatalog(ctx, toRow)
	}
	return nil
}

// TransferBulk procesa cada transferencia de forma aislada y reporta los
// fallos por índice sin abortar el resto.
func (uc *TransferUseCase) TransferBulk(ctx context.Context, items []TransferInput) []TransferResult {
	results := make([]TransferResult, 0, len(items))
	for i, item := range items {
		results = append(results, TransferResult{Index: i, Err: uc.Transfer(ctx, item)})
	}
	return results
}

func (uc *TransferUseCase) pushCatalog(ctx context.Context, row *entity.InventoryRow) {
	if uc.catalog == nil || row == nil || CatalogSyncSuppressed(ctx) {
		return
	}
	if err := uc.catalog.SetManagedStock(ctx, row.ProductID, row.VariationID, row.Qty, row.Qty.IsPositive()); err != nil {
		uc.log.Warn().
			Err(err).
			Int64("product_id", row.ProductID).
			Msg("push de stock al catálogo falló")
	}
}
